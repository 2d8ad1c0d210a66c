package models

import (
	"html/template"
	"time"
)

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title     string    `gorm:"size:300;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Topics    []Topic   `gorm:"many2many:question_topics;" json:"topics"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	ContentHTML  template.HTML `gorm:"-" json:"content_html,omitempty"`
	AnswerCount  int           `gorm:"-" json:"answer_count"`
	Upvotes      int64         `gorm:"-" json:"upvotes"`
	Downvotes    int64         `gorm:"-" json:"downvotes"`
	Net          int64         `gorm:"-" json:"net"`
	UserVoteType *string       `gorm:"-" json:"userVoteType,omitempty"`
	Answers      []Answer      `gorm:"-" json:"answers,omitempty"`
}
