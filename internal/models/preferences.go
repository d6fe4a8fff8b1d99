package models

// PreferencesSchemaVersion is the current on-disk layout of Preferences.
const PreferencesSchemaVersion = 1

// Preferences are the per-user settings kept in local storage.
type Preferences struct {
	Version       int      `json:"version"`
	Theme         string   `json:"theme"`
	FavoriteTools []string `json:"favoriteTools"`
	// SearchHistory is most-recent-first and de-duplicated.
	SearchHistory []string `json:"searchHistory"`
}
