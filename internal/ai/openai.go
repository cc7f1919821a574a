package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"smi-los/internal/model"
)

// Engine defines the discovery/analysis/generation collaborator used by the
// pipeline stages.
type Engine interface {
	// Discover proposes up to n content candidates for a search keyword.
	Discover(ctx context.Context, keyword string, n int) ([]model.Candidate, error)
	// Analyze scores a candidate. It always returns a usable analysis;
	// on internal failure it falls back to neutral scores.
	Analyze(ctx context.Context, c model.Candidate) model.Analysis
	// GenerateBlogPost drafts a structured post from a stored article.
	// It always returns a usable draft; on internal failure it falls back
	// to the article's own fields.
	GenerateBlogPost(ctx context.Context, a model.Article) model.BlogPost
}

// OpenAIClient implements Engine using OpenAI-compatible Chat Completions.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	services []string
}

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string            // optional
	Services map[string]string // company services, fed into prompts as context
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	m := cfg.Model
	if m == "" {
		panic("OpenAI model must be specified")
	}
	services := make([]string, 0, len(cfg.Services))
	for _, v := range cfg.Services {
		services = append(services, v)
	}
	sort.Strings(services)
	return &OpenAIClient{client: c, model: m, services: services}
}

func (o *OpenAIClient) Discover(ctx context.Context, keyword string, n int) ([]model.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	sys := "You are a research assistant for a niche engineering blog. " +
		"Company context: " + strings.Join(o.services, "; ") + "."
	user := fmt.Sprintf(`I am looking for articles and news on the topic: %q.

Suggest %d relevant sources or article topics that would interest the blog's audience.
For each suggestion provide a title, a short description (2-3 sentences), why it is
relevant, and the source reference.

Return JSON only:
{"articles": [{"title": "...", "description": "...", "relevance": "...", "source_type": "..."}]}`, keyword, n)

	out, err := o.create(ctx, sys, user)
	if err != nil {
		return nil, err
	}
	raw, ok := extractJSON(out)
	if !ok {
		slog.Warn("openai: no JSON in discovery response", "keyword", keyword)
		return nil, nil
	}
	var parsed struct {
		Articles []model.Candidate `json:"articles"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode discovery response: %w", err)
	}
	return parsed.Articles, nil
}

func (o *OpenAIClient) Analyze(ctx context.Context, c model.Candidate) model.Analysis {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	sys := "You rate article candidates for a company blog. " +
		"Company context: " + strings.Join(o.services, "; ") + "."
	user := fmt.Sprintf(`Analyze the following article candidate:

Title: %s
Description: %s

Rate it from 1 to 10 on: relevance for the audience, content quality, timeliness,
business value, and uniqueness. Also list key topics, the target audience,
adaptation tips, and a suggested social media title.

Return JSON only:
{"scores": {"relevance": 0, "quality": 0, "timeliness": 0, "business_value": 0, "uniqueness": 0, "overall": 0},
 "key_topics": [], "target_audience": "...", "adaptation_tips": "...", "social_media_title": "..."}`,
		c.Title, c.Description)

	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: analyze error", "err", err)
		return NeutralAnalysis()
	}
	raw, ok := extractJSON(out)
	if !ok {
		slog.Warn("openai: no JSON in analysis response")
		return NeutralAnalysis()
	}
	var a model.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		slog.Error("openai: decode analysis", "err", err)
		return NeutralAnalysis()
	}
	return a
}

func (o *OpenAIClient) GenerateBlogPost(ctx context.Context, art model.Article) model.BlogPost {
	ctx, cancel := context.WithTimeout(ctx, 300*time.Second)
	defer cancel()

	sys := "You write blog posts for an energy-audit company. " +
		"Company services: " + strings.Join(o.services, "; ") + "."
	user := fmt.Sprintf(`Based on the following material, write a blog post:

Original title: %s
Original content: %s

Produce an SEO-friendly title, an introduction (2-3 paragraphs), a main body split
into sections, a conclusion with a call to action, a meta description (160 characters
max), and a list of tags.

Return JSON only:
{"title": "...", "intro": "...", "body": "...", "conclusion": "...", "meta_description": "...", "tags": []}`,
		art.Title, art.Content)

	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: generate blog post error", "err", err)
		return FallbackBlogPost(art)
	}
	raw, ok := extractJSON(out)
	if !ok {
		slog.Warn("openai: no JSON in blog post response")
		return FallbackBlogPost(art)
	}
	var p model.BlogPost
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		slog.Error("openai: decode blog post", "err", err)
		return FallbackBlogPost(art)
	}
	if r := []rune(p.MetaDescription); len(r) > 160 {
		p.MetaDescription = string(r[:160])
	}
	return p
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// NeutralAnalysis is the fixed fallback returned when scoring fails.
func NeutralAnalysis() model.Analysis {
	return model.Analysis{
		Scores: model.Scores{
			Relevance:     5.0,
			Quality:       5.0,
			Timeliness:    5.0,
			BusinessValue: 5.0,
			Uniqueness:    5.0,
			Overall:       5.0,
		},
		TargetAudience: "general audience",
		AdaptationTips: "manual review required",
	}
}

// FallbackBlogPost assembles a usable draft from the article's own fields.
func FallbackBlogPost(a model.Article) model.BlogPost {
	meta := a.Content
	if r := []rune(meta); len(r) > 160 {
		meta = string(r[:160])
	}
	return model.BlogPost{
		Title:           a.Title,
		Intro:           a.Content,
		Body:            a.Content,
		Conclusion:      "Contact us for a professional consultation.",
		MetaDescription: meta,
	}
}

// extractJSON returns the widest {...} span in s, tolerating prose or code
// fences around the JSON payload in model responses.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
