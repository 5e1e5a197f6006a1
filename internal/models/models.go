package models

import "time"

// User is a registered account that can publish posts, comment and follow
// other authors.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// Group is a named topic a post may optionally belong to. Identity for URL
// purposes is the slug.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"uniqueIndex;not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string
}

// Post is a published text entry. PubDate is set once at creation and never
// updated. GroupID is nullable so that deleting a group leaves its posts in
// place with the reference cleared.
type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"not null"`
	PubDate  time.Time `gorm:"not null;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID"`
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string
}

// Comment belongs to exactly one post and is removed with it.
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	PostID   uint      `gorm:"not null;index"`
	Text     string    `gorm:"not null"`
	Created  time.Time `gorm:"not null"`
	AuthorID uint      `gorm:"not null"`
	Author   User      `gorm:"foreignKey:AuthorID"`
}

// Follow is a directed edge from a follower to a followed author. The
// composite unique index keeps the edge set duplicate-free even when two
// follow requests race.
type Follow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_follower_author;not null"`
	AuthorID  uint      `gorm:"index;uniqueIndex:idx_follower_author;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
