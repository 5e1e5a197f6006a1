package storage

import (
	"gorm.io/gorm"

	"github.com/dkorchagin/plume/internal/models"
)

// feedOrder is the shared ordering of every post listing: newest first,
// id as a tiebreak for posts published in the same instant.
func feedOrder(db *gorm.DB) *gorm.DB {
	return db.Order("pub_date DESC, id DESC")
}

func (s *DBStorage) CreatePost(post *models.Post) error {
	return s.db.Create(post).Error
}

// UpdatePost persists text, group and image changes. The publication date
// and author are never touched.
func (s *DBStorage) UpdatePost(post *models.Post) error {
	return s.db.Model(&models.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// PostByAuthorAndID fetches one post matching both the author's username and
// the post id. A post that exists under a different author is not found.
func (s *DBStorage) PostByAuthorAndID(username string, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.Joins("Author").Joins("Group").
		Where("posts.id = ? AND \"Author\".username = ?", postID, username).
		First(&post).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &post, nil
}

func (s *DBStorage) listPosts(query *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	err := feedOrder(query.Preload("Author").Preload("Group")).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *DBStorage) Posts() ([]models.Post, error) {
	return s.listPosts(s.db.Model(&models.Post{}))
}

func (s *DBStorage) PostsByGroup(groupID uint) ([]models.Post, error) {
	return s.listPosts(s.db.Where("group_id = ?", groupID))
}

func (s *DBStorage) PostsByAuthor(authorID uint) ([]models.Post, error) {
	return s.listPosts(s.db.Where("author_id = ?", authorID))
}

// PostsByFollowed lists posts whose author the given user follows.
func (s *DBStorage) PostsByFollowed(userID uint) ([]models.Post, error) {
	followed := s.db.Model(&models.Follow{}).
		Select("author_id").Where("user_id = ?", userID)
	return s.listPosts(s.db.Where("author_id IN (?)", followed))
}

// DeletePost removes a post together with its comments.
func (s *DBStorage) DeletePost(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
