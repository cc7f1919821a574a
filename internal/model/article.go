package model

import (
	"encoding/json"
	"time"
)

// Article statuses. An article holds exactly one status at a time.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPublished = "published"
)

// Publication outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Article is a discovered content candidate tracked through its lifecycle.
// URL is the canonical identifier used for deduplication.
type Article struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	Content        string          `json:"content"`
	Source         string          `json:"source"`
	Keywords       []string        `json:"keywords"`
	AIScore        float64         `json:"ai_score"`
	RelevanceScore float64         `json:"relevance_score"`
	FoundDate      time.Time       `json:"found_date"`
	Status         string          `json:"status"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
}

// Publication is append-only evidence that an article was pushed to a platform.
type Publication struct {
	ID            int64     `json:"id"`
	ArticleID     int64     `json:"article_id"`
	Platform      string    `json:"platform"`
	PostID        string    `json:"post_id"`
	PublishedDate time.Time `json:"published_date"`
	Status        string    `json:"status"`
}

// SearchRecord is the audit trail of a single discovery run for one keyword.
type SearchRecord struct {
	ID           int64     `json:"id"`
	Keyword      string    `json:"keyword"`
	SearchDate   time.Time `json:"search_date"`
	ResultsCount int       `json:"results_count"`
}

// Candidate is a raw discovery result before analysis and normalization.
type Candidate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Relevance   string `json:"relevance,omitempty"`
	SourceType  string `json:"source_type"`
}

// Scores holds the per-criterion analysis scores on a 0..10 scale.
type Scores struct {
	Relevance     float64 `json:"relevance"`
	Quality       float64 `json:"quality"`
	Timeliness    float64 `json:"timeliness"`
	BusinessValue float64 `json:"business_value"`
	Uniqueness    float64 `json:"uniqueness"`
	Overall       float64 `json:"overall"`
}

// Analysis is the structured payload returned by the scoring collaborator.
// It is retained verbatim on the article for later stages.
type Analysis struct {
	Scores           Scores   `json:"scores"`
	KeyTopics        []string `json:"key_topics"`
	TargetAudience   string   `json:"target_audience"`
	AdaptationTips   string   `json:"adaptation_tips"`
	SocialMediaTitle string   `json:"social_media_title"`
}

// BlogPost is a structured draft produced by the generation collaborator.
type BlogPost struct {
	Title           string   `json:"title"`
	Intro           string   `json:"intro"`
	Body            string   `json:"body"`
	Conclusion      string   `json:"conclusion"`
	MetaDescription string   `json:"meta_description"`
	Tags            []string `json:"tags"`
}
