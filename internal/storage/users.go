package storage

import "github.com/dkorchagin/plume/internal/models"

func (s *DBStorage) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *DBStorage) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *DBStorage) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}
