package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dkorchagin/plume/internal/models"
)

// GetOrCreateFollow creates the follow edge unless it already exists. When
// two requests race, the unique index rejects the duplicate and the loser is
// reported as not created.
func (s *DBStorage) GetOrCreateFollow(userID, authorID uint) (bool, error) {
	var existing models.Follow
	err := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID, CreatedAt: time.Now()}
	if err := s.db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteFollow removes the edge, reporting ErrNotFound when it is absent.
func (s *DBStorage) DeleteFollow(userID, authorID uint) error {
	res := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Follows reports whether user follows author.
func (s *DBStorage) Follows(userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DBStorage) FollowsByUser(userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := s.db.Where("user_id = ?", userID).Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}
