package models

import (
	"time"
)

// Item type discriminant and vote directions. Validated at the boundary,
// never trusted as a free-form string inside the data layer.
const (
	ItemTypeQuestion = "question"
	ItemTypeAnswer   = "answer"

	VoteTypeUp   = "upvote"
	VoteTypeDown = "downvote"
)

type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_item" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ItemType  string    `gorm:"size:16;not null;uniqueIndex:idx_votes_user_item;index:idx_votes_item" json:"itemType"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_item;index:idx_votes_item" json:"itemId"`
	Value     int       `gorm:"not null" json:"-"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteType maps the stored value back to the wire direction.
func (v *Vote) VoteType() string {
	if v.Value < 0 {
		return VoteTypeDown
	}
	return VoteTypeUp
}

// ValueForVoteType maps a wire direction to the stored value.
// Callers must validate voteType first.
func ValueForVoteType(voteType string) int {
	if voteType == VoteTypeDown {
		return -1
	}
	return 1
}
