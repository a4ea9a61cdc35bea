package preferences

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

// Repository is a key/value table of preference records. In practice only
// one key ("user") is ever written.
type Repository interface {
	Get(ctx context.Context, id string) (*models.PreferenceRecord, error)
	Set(ctx context.Context, rec *models.PreferenceRecord) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) iter.Seq2[*models.PreferenceRecord, error]
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
