package storage

import (
	"gorm.io/gorm"

	"github.com/dkorchagin/plume/internal/models"
)

func (s *DBStorage) CreateGroup(group *models.Group) error {
	return s.db.Create(group).Error
}

func (s *DBStorage) GroupBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &group, nil
}

func (s *DBStorage) GroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &group, nil
}

func (s *DBStorage) Groups() ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup removes a group. Posts referencing it keep existing with the
// group reference cleared.
func (s *DBStorage) DeleteGroup(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
