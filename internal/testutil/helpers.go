package testutil

import (
	"path/filepath"
	"ratingd/internal/structures"
	"strconv"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// StoreConfig returns a config whose data, archive and settings paths live
// under root.
func StoreConfig(root string) *structures.Config {
	return &structures.Config{
		Storage: structures.StorageConfig{
			DataDir:      filepath.Join(root, "data"),
			ArchiveDir:   filepath.Join(root, "archive"),
			EventsFile:   "ratings.json",
			RowLogFile:   "ratings.csv",
			SettingsFile: filepath.Join(root, "resource", "config.json"),
		},
	}
}
