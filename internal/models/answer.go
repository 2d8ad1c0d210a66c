package models

import (
	"html/template"
	"time"
)

type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Question   Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	ContentHTML  template.HTML `gorm:"-" json:"content_html,omitempty"`
	Upvotes      int64         `gorm:"-" json:"upvotes"`
	Downvotes    int64         `gorm:"-" json:"downvotes"`
	Net          int64         `gorm:"-" json:"net"`
	UserVoteType *string       `gorm:"-" json:"userVoteType,omitempty"`
}
