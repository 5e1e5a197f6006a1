package migrate

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// MigrationRecord tracks applied migrations in the database.
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

var (
	registry      = make([]*Migration, 0)
	registryMutex sync.RWMutex
)

// Register adds a migration to the global registry, typically from an init
// function in the migrations package.
func Register(migration *Migration) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry = append(registry, migration)
}

// Registered returns all registered migrations ordered by version.
func Registered() []*Migration {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	migrations := make([]*Migration, len(registry))
	copy(migrations, registry)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// Migrator applies and rolls back migrations against a database.
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: Registered(),
	}
}

// Register adds a migration to this migrator only, on top of the globally
// registered set.
func (m *Migrator) Register(migration *Migration) {
	m.migrations = append(m.migrations, migration)
}

func (m *Migrator) ensureVersionTable() error {
	return m.db.AutoMigrate(&MigrationRecord{})
}

// AppliedVersions returns a map of migration versions already applied.
func (m *Migrator) AppliedVersions() (map[string]bool, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var records []MigrationRecord
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}

	versions := make(map[string]bool)
	for _, record := range records {
		versions[record.Version] = true
	}
	return versions, nil
}

// Migrations returns the migrations known to this migrator, in order.
func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

// Up applies all pending migrations in version order.
func (m *Migrator) Up() error {
	applied, err := m.AppliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			if err := migration.Up(m.db); err != nil {
				return err
			}

			record := MigrationRecord{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now(),
			}

			if err := m.db.Create(&record).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down() error {
	var lastRecord MigrationRecord
	if err := m.db.Order("applied_at DESC").First(&lastRecord).Error; err != nil {
		return err
	}

	var target *Migration
	for _, migration := range m.migrations {
		if migration.Version == lastRecord.Version {
			target = migration
			break
		}
	}

	if target == nil {
		return nil
	}

	if err := target.Down(m.db); err != nil {
		return err
	}

	return m.db.Delete(&lastRecord).Error
}
