package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smi-los/internal/model"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"surrounding prose", `Here you go: {"a":1} hope it helps`, `{"a":1}`, true},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"no json", "sorry, I cannot do that", "", false},
		{"unbalanced", "}{", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSON(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// chatServer fakes an OpenAI-compatible chat completions endpoint returning
// the given message content.
func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "upstream error", status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	return NewOpenAI(Config{
		APIKey:   "test-key",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL + "/v1",
		Services: map[string]string{"audit": "energy audits"},
	})
}

func TestDiscover(t *testing.T) {
	content := "Here are some ideas:\n" +
		`{"articles": [{"title": "Heat Loss in Old Buildings", "description": "desc", "relevance": "high", "source_type": "https://example.com/heat-loss"}]}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv)
	got, err := c.Discover(context.Background(), "heat loss", 5)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Title != "Heat Loss in Old Buildings" {
		t.Errorf("Title = %q", got[0].Title)
	}
	if got[0].SourceType != "https://example.com/heat-loss" {
		t.Errorf("SourceType = %q", got[0].SourceType)
	}
}

func TestDiscover_NoJSONInResponse(t *testing.T) {
	srv := chatServer(t, "I could not find anything relevant.", http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv)
	got, err := c.Discover(context.Background(), "heat loss", 5)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestAnalyze_FallsBackToNeutral(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := newTestClient(t, srv)
	got := c.Analyze(context.Background(), model.Candidate{Title: "x"})
	want := NeutralAnalysis()
	if got.Scores != want.Scores {
		t.Errorf("Scores = %+v, want neutral %+v", got.Scores, want.Scores)
	}
}

func TestAnalyze_ParsesScores(t *testing.T) {
	content := `{"scores": {"relevance": 8, "quality": 7, "timeliness": 6, "business_value": 9, "uniqueness": 5, "overall": 7.5},
 "key_topics": ["insulation"], "target_audience": "homeowners", "adaptation_tips": "tips", "social_media_title": "title"}`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv)
	got := c.Analyze(context.Background(), model.Candidate{Title: "x"})
	if got.Scores.Overall != 7.5 {
		t.Errorf("Overall = %v, want 7.5", got.Scores.Overall)
	}
	if got.TargetAudience != "homeowners" {
		t.Errorf("TargetAudience = %q", got.TargetAudience)
	}
}

func TestGenerateBlogPost_FallsBackToArticle(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := newTestClient(t, srv)
	a := model.Article{Title: "Original Title", Content: "Original content."}
	got := c.GenerateBlogPost(context.Background(), a)
	if got.Title != a.Title {
		t.Errorf("Title = %q, want %q", got.Title, a.Title)
	}
	if got.Intro != a.Content || got.Body != a.Content {
		t.Errorf("fallback draft not built from article fields: %+v", got)
	}
}

func TestGenerateBlogPost_TruncatesMetaDescription(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	content, _ := json.Marshal(model.BlogPost{
		Title:           "T",
		Intro:           "i",
		Body:            "b",
		Conclusion:      "c",
		MetaDescription: string(long),
	})
	srv := chatServer(t, string(content), http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv)
	got := c.GenerateBlogPost(context.Background(), model.Article{Title: "x"})
	if n := len([]rune(got.MetaDescription)); n != 160 {
		t.Errorf("meta description length = %d, want 160", n)
	}
}

func TestFallbackBlogPost_TruncatesMeta(t *testing.T) {
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'é'
	}
	got := FallbackBlogPost(model.Article{Title: "t", Content: string(long)})
	if n := len([]rune(got.MetaDescription)); n != 160 {
		t.Errorf("meta description length = %d runes, want 160", n)
	}
}
