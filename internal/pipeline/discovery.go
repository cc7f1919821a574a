package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"smi-los/internal/ai"
	"smi-los/internal/model"
	"smi-los/internal/ratelimit"
	"smi-los/internal/store"
)

// SourceName tags every discovered article with its origin.
const SourceName = "ai-search"

// Discovery iterates the configured search keywords, asks the engine for
// candidates, scores them, and commits new articles into the store.
type Discovery struct {
	Store      *store.Store
	Engine     ai.Engine
	Keywords   []string
	PerKeyword int // candidates requested per keyword
	Limiter    *ratelimit.Limiter
}

// Run executes one discovery pass and returns how many new articles were
// stored. A single keyword's failure is isolated: the keyword is skipped and
// the pass continues. Duplicates are expected and are not errors.
func (d *Discovery) Run(ctx context.Context) (int, error) {
	perKeyword := d.PerKeyword
	if perKeyword <= 0 {
		perKeyword = 5
	}

	found := 0
	for i, keyword := range d.Keywords {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		if i > 0 {
			d.Limiter.Wait(ctx)
		}

		slog.Info("discovery: searching", "keyword", keyword)
		candidates, err := d.Engine.Discover(ctx, keyword, perKeyword)
		if err != nil {
			slog.Error("discovery: search failed", "keyword", keyword, "err", err)
			continue
		}

		for _, c := range candidates {
			analysis := d.Engine.Analyze(ctx, c)
			raw, err := json.Marshal(analysis)
			if err != nil {
				slog.Error("discovery: encode analysis", "err", err)
				raw = nil
			}
			article := model.Article{
				Title:          c.Title,
				URL:            c.SourceType,
				Content:        c.Description,
				Source:         SourceName,
				Keywords:       []string{keyword},
				AIScore:        analysis.Scores.Overall,
				RelevanceScore: analysis.Scores.Relevance,
				Analysis:       raw,
			}
			id, err := d.Store.InsertArticle(ctx, article)
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				slog.Info("discovery: article already exists", "title", article.Title, "url", article.URL)
			case err != nil:
				slog.Error("discovery: store article", "title", article.Title, "err", err)
			default:
				found++
				slog.Info("discovery: added article", "id", id, "title", article.Title, "score", article.AIScore)
			}
		}

		if err := d.Store.RecordSearch(ctx, keyword, len(candidates)); err != nil {
			slog.Error("discovery: record search history", "keyword", keyword, "err", err)
		}
	}

	slog.Info("discovery: pass completed", "found", found)
	return found, nil
}
