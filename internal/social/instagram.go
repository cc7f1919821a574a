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
)

// Instagram publishes image posts to an Instagram business account.
// Instagram has no text-only posts, so Publish without an image asset
// reports ErrAssetRequired and the channel is skipped.
type Instagram struct {
	accessToken string
	accountID   string
	baseURL     string
	http        *http.Client
}

// NewInstagram creates an Instagram publisher. apiVersion is e.g. "v18.0".
func NewInstagram(accessToken, accountID, apiVersion string, timeout time.Duration) *Instagram {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Instagram{
		accessToken: accessToken,
		accountID:   accountID,
		baseURL:     "https://graph.facebook.com/" + apiVersion,
		http:        &http.Client{Timeout: timeout},
	}
}

func (i *Instagram) Name() string { return "instagram" }

// Publish is the text-only entry point. No image asset is available on this
// path, so it always reports ErrAssetRequired.
func (i *Instagram) Publish(ctx context.Context, message, link string) (string, error) {
	return "", ErrAssetRequired
}

// PublishImage creates a media container for imageURL with the given caption
// and publishes it. This is the two-step container/publish Graph API flow.
func (i *Instagram) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	containerID, err := i.createContainer(ctx, imageURL, caption)
	if err != nil {
		return "", err
	}
	return i.publishContainer(ctx, containerID)
}

func (i *Instagram) createContainer(ctx context.Context, imageURL, caption string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", i.baseURL, i.accountID)
	form := url.Values{
		"image_url":    {imageURL},
		"caption":      {caption},
		"access_token": {i.accessToken},
	}
	return i.post(ctx, endpoint, form)
}

func (i *Instagram) publishContainer(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", i.baseURL, i.accountID)
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {i.accessToken},
	}
	return i.post(ctx, endpoint, form)
}

func (i *Instagram) post(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := i.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("instagram: request failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("instagram: missing id in response")
	}
	return out.ID, nil
}
