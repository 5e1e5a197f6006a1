package storage

import "github.com/dkorchagin/plume/internal/models"

func (s *DBStorage) CreateComment(comment *models.Comment) error {
	return s.db.Create(comment).Error
}

// CommentsByPost lists a post's comments oldest first.
func (s *DBStorage) CommentsByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created, id").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
