package store

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
)

// SavePreferences overwrites the singleton preference record.
func (s *Store) SavePreferences(ctx context.Context, p models.Preferences) error {
	return s.Put(ctx, models.TablePreferences, &models.PreferenceRecord{ID: common.PreferencesKey, Preferences: p})
}

// GetPreferences returns the stored preferences or DefaultPreferences when
// nothing has been saved.
func (s *Store) GetPreferences(ctx context.Context) (models.Preferences, error) {
	if err := s.ready(ctx); err != nil {
		return models.Preferences{}, err
	}
	rec, err := s.preferences.Get(ctx, common.PreferencesKey)
	if errors.Is(err, common.ErrNotFound) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, err
	}
	return rec.Preferences, nil
}
