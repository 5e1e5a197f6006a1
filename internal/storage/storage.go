package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkorchagin/plume/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage defines the query surface the handlers are allowed to use.
// Reverse relations of the data model are expressed as explicit methods
// rather than model accessors.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	UserByUsername(username string) (*models.User, error)
	UserByID(id uint) (*models.User, error)

	// Groups
	CreateGroup(group *models.Group) error
	GroupBySlug(slug string) (*models.Group, error)
	GroupByID(id uint) (*models.Group, error)
	Groups() ([]models.Group, error)
	DeleteGroup(id uint) error

	// Posts
	CreatePost(post *models.Post) error
	UpdatePost(post *models.Post) error
	PostByAuthorAndID(username string, postID uint) (*models.Post, error)
	Posts() ([]models.Post, error)
	PostsByGroup(groupID uint) ([]models.Post, error)
	PostsByAuthor(authorID uint) ([]models.Post, error)
	PostsByFollowed(userID uint) ([]models.Post, error)
	DeletePost(id uint) error

	// Comments
	CreateComment(comment *models.Comment) error
	CommentsByPost(postID uint) ([]models.Comment, error)

	// Follows
	GetOrCreateFollow(userID, authorID uint) (created bool, err error)
	DeleteFollow(userID, authorID uint) error
	Follows(userID, authorID uint) (bool, error)
	FollowsByUser(userID uint) ([]models.Follow, error)

	DB() *gorm.DB
	Close() error
}

// DBStorage implements Storage on top of a gorm connection.
type DBStorage struct {
	db *gorm.DB
}

// Open connects to the configured database. Supported drivers are
// "postgres" and "sqlite".
func Open(driver, dsn string) (*DBStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DBStorage{db: db}, nil
}

// New wraps an existing gorm connection, used by tests.
func New(db *gorm.DB) *DBStorage {
	return &DBStorage{db: db}
}

// DB exposes the underlying connection for migrations.
func (s *DBStorage) DB() *gorm.DB {
	return s.db
}

func (s *DBStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
