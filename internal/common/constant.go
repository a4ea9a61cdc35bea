package common

// CacheStatusHeader is set on responses produced by the request router:
// "hit" when served from a bucket, "miss" when fetched from the network.
const CacheStatusHeader = "X-Offline-Cache"

// PreferencesKey is the key of the singleton preference record.
const PreferencesKey = "user"
