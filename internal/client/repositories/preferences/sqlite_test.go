package preferences

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	in := &models.PreferenceRecord{ID: "user", Preferences: models.Preferences{
		Theme:         "dark",
		FontSize:      "large",
		Language:      "lv",
		DefaultRelays: []string{"wss://a", "wss://b"},
		MutedUsers:    []string{},
		MutedWords:    []string{"spam"},
	}}
	require.NoError(t, r.Set(ctx, in))

	got, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestGet_NotExists_ReturnsNotFound(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	_, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "user", Preferences: models.DefaultPreferences()}))
	next := models.DefaultPreferences()
	next.Theme = "light"
	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "user", Preferences: next}))

	got, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "light", got.Preferences.Theme)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAll_ReturnsEveryKey(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "b", Preferences: models.DefaultPreferences()}))
	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "a", Preferences: models.DefaultPreferences()}))

	var keys []string
	for rec, err := range r.All(ctx) {
		require.NoError(t, err)
		keys = append(keys, rec.ID)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestDeleteAndClear(t *testing.T) {
	r := NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "user", Preferences: models.DefaultPreferences()}))
	require.NoError(t, r.Delete(ctx, "user"))
	require.ErrorIs(t, r.Delete(ctx, "user"), common.ErrNotFound)

	require.NoError(t, r.Set(ctx, &models.PreferenceRecord{ID: "user", Preferences: models.DefaultPreferences()}))
	require.NoError(t, r.Clear(ctx))
	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
