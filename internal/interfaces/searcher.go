package interfaces

import (
	"context"

	"github.com/raysh454/utsushi/internal/model"
)

// Searcher is the external search capability the gatherer depends on.
// Implementations are best-effort: they may return fewer hits than limit
// and must respect ctx for cancellation.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error)
}
