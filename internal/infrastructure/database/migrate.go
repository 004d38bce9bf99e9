package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"framelink-support/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.UploadedFile{}, &entities.Contact{}); err != nil {
		return err
	}
	log.Info().Msg("applied uploaded file and contact migrations")
	return nil
}
