package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smi-los/internal/model"
)

// Facebook publishes text posts to a Facebook page via the Graph API.
type Facebook struct {
	accessToken string
	pageID      string
	baseURL     string
	http        *http.Client
}

// NewFacebook creates a Facebook page publisher. apiVersion is e.g. "v18.0".
func NewFacebook(accessToken, pageID, apiVersion string, timeout time.Duration) *Facebook {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Facebook{
		accessToken: accessToken,
		pageID:      pageID,
		baseURL:     "https://graph.facebook.com/" + apiVersion,
		http:        &http.Client{Timeout: timeout},
	}
}

func (f *Facebook) Name() string { return "facebook" }

// Publish creates a page feed post and returns the post ID.
func (f *Facebook) Publish(ctx context.Context, message, link string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/feed", f.baseURL, f.pageID)
	form := url.Values{
		"message":      {message},
		"access_token": {f.accessToken},
	}
	if link != "" {
		form.Set("link", link)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("facebook: create post failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("facebook: missing id in response")
	}
	return out.ID, nil
}

// FormatMessage composes the page post text for an article.
func FormatMessage(a model.Article, blogURL string) string {
	desc := a.Content
	if r := []rune(desc); len(r) > 200 {
		desc = string(r[:200])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\U0001F4E2 %s\n\n%s...\n\nRead the full article on our site! \U0001F447\n", a.Title, desc)
	if blogURL != "" {
		b.WriteString("\n" + blogURL)
	}
	b.WriteString("\n\n#energyaudit #thermalimaging #ventilation #heatloss #energyefficiency")
	return b.String()
}
