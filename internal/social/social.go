// Package social implements the secondary distribution channels.
package social

import (
	"context"
	"errors"
)

// ErrAssetRequired reports that a channel cannot post without an image asset.
// Callers treat it as a skip, not a failure.
var ErrAssetRequired = errors.New("image asset required")

// Publisher is a secondary channel that can post a text message with an
// optional link. Channels that cannot post text-only content return
// ErrAssetRequired.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, message, link string) (postID string, err error)
}
