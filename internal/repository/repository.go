package repository

import (
	"errors"

	"code-review-assistant/backend/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no rows
var ErrNotFound = errors.New("record not found")

// Models lists every table owned by the service, in migration order
func Models() []any {
	return []any{
		&models.User{},
		&models.CodeSession{},
		&models.Suggestion{},
		&models.SuggestionLatency{},
		&models.AcceptedFeedback{},
		&models.RejectedFeedback{},
		&models.ModifiedFeedback{},
		&models.UserPattern{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
