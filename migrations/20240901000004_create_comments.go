package migrations

import (
	"gorm.io/gorm"

	"github.com/dkorchagin/plume/internal/migrate"
	"github.com/dkorchagin/plume/internal/models"
)

func init() {
	migrate.Register(&migrate.Migration{
		Version: "20240901000004",
		Name:    "create_comments",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(&models.Comment{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.Comment{})
		},
	})
}
