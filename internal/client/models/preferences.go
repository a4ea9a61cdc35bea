package models

import (
	"slices"
	"strings"
)

// Preferences is the singleton per-device preference record.
type Preferences struct {
	Theme         string   `json:"theme"`
	FontSize      string   `json:"fontSize"`
	Language      string   `json:"language"`
	DefaultRelays []string `json:"defaultRelays"`
	MutedUsers    []string `json:"mutedUsers"`
	MutedWords    []string `json:"mutedWords"`
}

// DefaultPreferences is returned when nothing has been saved yet.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "system",
		FontSize:      "medium",
		Language:      "en",
		DefaultRelays: []string{},
		MutedUsers:    []string{},
		MutedWords:    []string{},
	}
}

// PreferenceRecord binds Preferences to its store key.
type PreferenceRecord struct {
	ID          string
	Preferences Preferences
}

func (p *PreferenceRecord) Table() Table { return TablePreferences }
func (p *PreferenceRecord) Key() string  { return p.ID }

func (p *PreferenceRecord) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return invalid("preference key is required")
	}
	p.Preferences.DefaultRelays = NormalizeSet(p.Preferences.DefaultRelays)
	p.Preferences.MutedUsers = NormalizeSet(p.Preferences.MutedUsers)
	p.Preferences.MutedWords = NormalizeSet(p.Preferences.MutedWords)
	return nil
}

// NormalizeSet trims, deduplicates and sorts values. The result is never nil
// so empty sets survive a JSON round trip as [].
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
