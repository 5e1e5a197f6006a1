package migrations

import (
	"gorm.io/gorm"

	"github.com/dkorchagin/plume/internal/migrate"
	"github.com/dkorchagin/plume/internal/models"
)

func init() {
	migrate.Register(&migrate.Migration{
		Version: "20240901000002",
		Name:    "create_groups",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(&models.Group{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.Group{})
		},
	})
}
