package database

import "tgscraper/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: channels must exist before posts reference them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Channel{},
		&models.Post{},
	}
}
