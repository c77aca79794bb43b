package models

import (
	"fmt"

	"gorm.io/gorm"
)

// SubjectType tags what kind of record a comment is attached to
type SubjectType string

const (
	SubjectTask     SubjectType = "task"
	SubjectClient   SubjectType = "client"
	SubjectStrategy SubjectType = "strategy"
)

// CommentSubject is a tagged reference to the record a comment belongs to.
// Lookups against it dispatch on Type exhaustively rather than trusting a
// free-form string at each call site.
type CommentSubject struct {
	Type SubjectType `json:"type" gorm:"column:subject_type;not null;index:idx_comment_subject"`
	ID   string      `json:"referenceId" gorm:"column:subject_id;not null;index:idx_comment_subject"`
}

// ParseCommentSubject validates a raw type/id pair into a CommentSubject.
func ParseCommentSubject(rawType, id string) (CommentSubject, error) {
	if id == "" {
		return CommentSubject{}, fmt.Errorf("comment subject id is required")
	}
	switch SubjectType(rawType) {
	case SubjectTask, SubjectClient, SubjectStrategy:
		return CommentSubject{Type: SubjectType(rawType), ID: id}, nil
	default:
		return CommentSubject{}, fmt.Errorf("invalid comment subject type %q", rawType)
	}
}

// Exists checks that the referenced record is present in the store.
func (s CommentSubject) Exists(db *gorm.DB) (bool, error) {
	var count int64
	var err error
	switch s.Type {
	case SubjectTask:
		err = db.Model(&Task{}).Where("id = ?", s.ID).Count(&count).Error
	case SubjectClient:
		err = db.Model(&Client{}).Where("id = ?", s.ID).Count(&count).Error
	case SubjectStrategy:
		err = db.Model(&Strategy{}).Where("id = ?", s.ID).Count(&count).Error
	default:
		return false, fmt.Errorf("invalid comment subject type %q", s.Type)
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Comment represents a user-authored note on a task, client or strategy.
type Comment struct {
	ID       string         `json:"id" gorm:"primaryKey"`
	Content  string         `json:"content" gorm:"not null"`
	Subject  CommentSubject `json:"subject" gorm:"embedded"`
	AuthorID string         `json:"authorId" gorm:"column:author_id;index"`
	Author   *User          `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	gorm.Model
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}
