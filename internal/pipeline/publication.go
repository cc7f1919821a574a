package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"smi-los/internal/ai"
	"smi-los/internal/archive"
	"smi-los/internal/model"
	"smi-los/internal/ratelimit"
	"smi-los/internal/social"
	"smi-los/internal/store"
)

// PlatformBlog is the primary channel name recorded on publications.
const PlatformBlog = "wordpress"

// BlogChannel is the primary publication channel.
type BlogChannel interface {
	// PublishDraft pushes a drafted post and returns the channel post ID
	// and the post's canonical URL.
	PublishDraft(ctx context.Context, post model.BlogPost) (postID, postURL string, err error)
}

// Publication pulls gated articles from the store, drafts posts, and pushes
// them to the primary channel plus the secondary fan-out channels.
type Publication struct {
	Store     *store.Store
	Engine    ai.Engine
	Blog      BlogChannel
	Channels  []social.Publisher
	SiteURL   string // link attached to secondary-channel posts
	MinScore  float64
	MaxPerDay int
	Limiter   *ratelimit.Limiter
	Archive   *archive.Writer // optional local draft copies
}

// PublishBlog publishes up to MaxPerDay gated articles to the primary
// channel and returns how many were published. A failed publish leaves the
// article pending; the next scheduled pass retries it.
func (p *Publication) PublishBlog(ctx context.Context) (int, error) {
	articles, err := Eligible(ctx, p.Store, p.MinScore, p.MaxPerDay)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		slog.Info("publication: nothing eligible")
		return 0, nil
	}

	published := 0
	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		if i > 0 {
			p.Limiter.Wait(ctx)
		}

		post := p.Engine.GenerateBlogPost(ctx, a)
		if p.Archive != nil {
			if path, err := p.Archive.Write(a, post); err != nil {
				slog.Warn("publication: archive draft", "article", a.ID, "err", err)
			} else {
				slog.Info("publication: draft archived", "article", a.ID, "path", path)
			}
		}

		postID, postURL, err := p.Blog.PublishDraft(ctx, post)
		if err != nil {
			slog.Error("publication: blog publish failed", "article", a.ID, "title", post.Title, "err", err)
			if rerr := p.Store.RecordPublication(ctx, a.ID, PlatformBlog, "", model.OutcomeFailure); rerr != nil {
				slog.Error("publication: record failure", "article", a.ID, "err", rerr)
			}
			continue
		}

		if err := p.Store.SetStatus(ctx, a.ID, model.StatusPublished); err != nil {
			slog.Error("publication: set status", "article", a.ID, "err", err)
		}
		if err := p.Store.RecordPublication(ctx, a.ID, PlatformBlog, postID, model.OutcomeSuccess); err != nil {
			slog.Error("publication: record success", "article", a.ID, "err", err)
		}
		published++
		slog.Info("publication: published to blog", "article", a.ID, "post_id", postID, "url", postURL)
	}

	slog.Info("publication: pass completed", "published", published, "eligible", len(articles))
	return published, nil
}

// PublishChannel pushes at most one eligible article to a single secondary
// channel and returns the recorded outcome. Channels that need an image
// asset are recorded as skipped, not failed, and skips are not errors to the
// caller. An empty outcome means nothing was eligible.
func (p *Publication) PublishChannel(ctx context.Context, ch social.Publisher) (string, error) {
	articles, err := Eligible(ctx, p.Store, p.MinScore, 1)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		slog.Info("publication: nothing eligible for channel", "channel", ch.Name())
		return "", nil
	}
	a := articles[0]

	message := social.FormatMessage(a, p.SiteURL)
	postID, err := ch.Publish(ctx, message, p.SiteURL)
	outcome := model.OutcomeSuccess
	switch {
	case errors.Is(err, social.ErrAssetRequired):
		outcome = model.OutcomeSkipped
		slog.Info("publication: channel skipped, asset required", "channel", ch.Name(), "article", a.ID)
	case err != nil:
		outcome = model.OutcomeFailure
		slog.Error("publication: channel publish failed", "channel", ch.Name(), "article", a.ID, "err", err)
	default:
		slog.Info("publication: published to channel", "channel", ch.Name(), "article", a.ID, "post_id", postID)
	}
	if rerr := p.Store.RecordPublication(ctx, a.ID, ch.Name(), postID, outcome); rerr != nil {
		slog.Error("publication: record channel outcome", "channel", ch.Name(), "article", a.ID, "err", rerr)
	}
	if errors.Is(err, social.ErrAssetRequired) {
		return outcome, nil
	}
	return outcome, err
}

// PublishSocial runs the fan-out across all configured secondary channels,
// continuing past any single channel's failure. The returned map holds the
// recorded outcome per channel name; channels with nothing eligible are
// absent.
func (p *Publication) PublishSocial(ctx context.Context) (map[string]string, error) {
	outcomes := make(map[string]string, len(p.Channels))
	for _, ch := range p.Channels {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome, err := p.PublishChannel(ctx, ch)
		if err != nil {
			slog.Error("publication: fan-out channel error", "channel", ch.Name(), "err", err)
		}
		if outcome != "" {
			outcomes[ch.Name()] = outcome
		}
	}
	return outcomes, nil
}
