package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smi-los/internal/model"
)

// Client is a minimal HTTP client for the WordPress REST API (wp/v2).
type Client struct {
	baseURL  string
	apiURL   string
	username string
	password string
	http     *http.Client
}

// New creates a WordPress client. baseURL is the site root, e.g.
// "https://example.com" (no trailing slash required).
func New(baseURL, username, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL:  base,
		apiURL:   base + "/wp-json/wp/v2",
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

// PostPayload is the wire shape of a post creation request.
type PostPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
	Status  string `json:"status"`
	Tags    []int  `json:"tags,omitempty"`
}

// NewDraft builds a draft payload from a structured blog post, rendering the
// post body to HTML and resolving tag names to IDs (best-effort).
func (c *Client) NewDraft(ctx context.Context, post model.BlogPost) PostPayload {
	payload := PostPayload{
		Title:   post.Title,
		Content: FormatPost(post),
		Excerpt: post.MetaDescription,
		Status:  "draft",
	}
	if len(post.Tags) > 0 {
		ids, err := c.resolveTags(ctx, post.Tags)
		if err != nil {
			slog.Warn("wordpress: tag resolution failed", "err", err)
		}
		payload.Tags = ids
	}
	return payload
}

// CreatePost creates a new post and returns its ID.
func (c *Client) CreatePost(ctx context.Context, payload PostPayload) (string, error) {
	if c == nil {
		return "", errors.New("nil wordpress client")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("create post failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	var out struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	id := out.ID.String()
	if id == "" {
		return "", errors.New("create post: missing id in response")
	}
	return id, nil
}

// PublishDraft renders a structured post, creates it as a draft, and returns
// the channel post ID together with the post's canonical URL.
func (c *Client) PublishDraft(ctx context.Context, post model.BlogPost) (string, string, error) {
	payload := c.NewDraft(ctx, post)
	id, err := c.CreatePost(ctx, payload)
	if err != nil {
		return "", "", err
	}
	return id, c.PostURL(id), nil
}

// PostURL returns the canonical URL of a post by ID.
func (c *Client) PostURL(postID string) string {
	return c.baseURL + "/?p=" + postID
}

// resolveTags maps tag names to term IDs, creating missing tags.
// Failures on individual tags are skipped.
func (c *Client) resolveTags(ctx context.Context, names []string) ([]int, error) {
	var ids []int
	var lastErr error
	for _, name := range names {
		id, err := c.findTag(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}
		if id == 0 {
			id, err = c.createTag(ctx, name)
			if err != nil {
				lastErr = err
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids, lastErr
}

func (c *Client) findTag(ctx context.Context, name string) (int, error) {
	endpoint := c.apiURL + "/tags?search=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("search tag %q: status %d", name, resp.StatusCode)
	}
	var tags []struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return 0, err
	}
	if len(tags) == 0 {
		return 0, nil
	}
	return tags[0].ID, nil
}

func (c *Client) createTag(ctx context.Context, name string) (int, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/tags", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("create tag %q: status=%d body=%s", name, resp.StatusCode, string(b))
	}
	var out struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.ID, nil
}
