package services

import (
	"errors"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrVoteNotFound     = errors.New("no vote found for this item")

	ErrInvalidItemType = errors.New("invalid item type")
	ErrInvalidVoteType = errors.New("invalid vote type")
	ErrInvalidSort     = errors.New("invalid sort option")

	ErrTopicExists = errors.New("a topic with this name or slug already exists")
)
