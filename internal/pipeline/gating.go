package pipeline

import (
	"context"

	"smi-los/internal/model"
	"smi-los/internal/store"
)

// Eligible applies the gating policy: pending articles whose overall score
// meets the configured threshold, best first, capped at maxCount.
//
// Approval is advisory only: approved articles are not selected here, so a
// human approve/reject decision has no effect on what gets published. This
// mirrors the dashboard/gating split as designed.
func Eligible(ctx context.Context, st *store.Store, minScore float64, maxCount int) ([]model.Article, error) {
	return st.SelectGated(ctx, minScore, maxCount)
}
