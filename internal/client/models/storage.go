package models

// StorageEstimate is the host-reported storage usage in bytes. All zeros
// means "unknown", not "no capacity".
type StorageEstimate struct {
	Used      int64 `json:"used"`
	Available int64 `json:"available"`
	Total     int64 `json:"total"`
}

// Known reports whether the host returned any figures at all.
func (s StorageEstimate) Known() bool {
	return s.Used != 0 || s.Available != 0 || s.Total != 0
}
