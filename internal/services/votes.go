package services

import (
	"errors"
	"time"

	"qanda/internal/db"
	"qanda/internal/models"

	"gorm.io/gorm"
)

// VoteCounts are always recomputed from live vote rows. There is no
// persisted counter anywhere, so ledger and displayed counts cannot drift.
type VoteCounts struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	Net       int64 `json:"net"`
}

// VoteInfo is a ledger row enriched with the voter's display identity.
type VoteInfo struct {
	ID        uint        `json:"id"`
	ItemID    uint        `json:"itemId"`
	ItemType  string      `json:"itemType"`
	VoteType  string      `json:"voteType"`
	Voter     models.User `json:"voter"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func ValidItemType(itemType string) bool {
	return itemType == models.ItemTypeQuestion || itemType == models.ItemTypeAnswer
}

func ValidVoteType(voteType string) bool {
	return voteType == models.VoteTypeUp || voteType == models.VoteTypeDown
}

// itemExists performs the kind-specific target existence check.
func itemExists(itemType string, itemID uint) (bool, error) {
	var count int64
	var err error
	switch itemType {
	case models.ItemTypeQuestion:
		err = db.DB.Model(&models.Question{}).Where("id = ?", itemID).Count(&count).Error
	case models.ItemTypeAnswer:
		err = db.DB.Model(&models.Answer{}).Where("id = ?", itemID).Count(&count).Error
	default:
		return false, ErrInvalidItemType
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func itemNotFoundError(itemType string) error {
	if itemType == models.ItemTypeAnswer {
		return ErrAnswerNotFound
	}
	return ErrQuestionNotFound
}

// CastVote records or mutates the caller's stance on one item with toggle
// semantics: no vote -> create; same direction -> delete (toggle off);
// other direction -> switch in place. Returns the resulting vote (nil after
// a toggle off), fresh tallies, and the caller's resulting direction.
func CastVote(userID uint, itemType string, itemID uint, voteType string) (*models.Vote, VoteCounts, *string, error) {
	if !ValidItemType(itemType) {
		return nil, VoteCounts{}, nil, ErrInvalidItemType
	}
	if !ValidVoteType(voteType) {
		return nil, VoteCounts{}, nil, ErrInvalidVoteType
	}

	exists, err := itemExists(itemType, itemID)
	if err != nil {
		return nil, VoteCounts{}, nil, err
	}
	if !exists {
		return nil, VoteCounts{}, nil, itemNotFoundError(itemType)
	}

	value := models.ValueForVoteType(voteType)

	tx := db.DB.Begin()
	if tx.Error != nil {
		return nil, VoteCounts{}, nil, tx.Error
	}

	// 检查是否已投票
	var existing models.Vote
	err = tx.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&existing).Error

	switch {
	case err == nil:
		if existing.Value == value {
			// Same direction again: toggle off
			if err := tx.Delete(&existing).Error; err != nil {
				tx.Rollback()
				return nil, VoteCounts{}, nil, err
			}
			if err := tx.Commit().Error; err != nil {
				return nil, VoteCounts{}, nil, err
			}
			counts, err := GetVoteCounts(itemType, itemID)
			return nil, counts, nil, err
		}
		// Different direction: switch in place, refresh timestamp
		if err := tx.Model(&existing).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error; err != nil {
			tx.Rollback()
			return nil, VoteCounts{}, nil, err
		}
		if err := tx.Commit().Error; err != nil {
			return nil, VoteCounts{}, nil, err
		}
		existing.Value = value
		counts, err := GetVoteCounts(itemType, itemID)
		vt := existing.VoteType()
		return &existing, counts, &vt, err

	case errors.Is(err, gorm.ErrRecordNotFound):
		newVote := models.Vote{
			UserID:   userID,
			ItemType: itemType,
			ItemID:   itemID,
			Value:    value,
		}
		if err := tx.Create(&newVote).Error; err != nil {
			tx.Rollback()
			// The unique index on (user, item_type, item_id) is the
			// authoritative backstop: a concurrent cast may have won the
			// insert. Apply the submitted direction to that row instead
			// of failing the request.
			return recoverConcurrentCast(userID, itemType, itemID, value, err)
		}
		if err := tx.Commit().Error; err != nil {
			return nil, VoteCounts{}, nil, err
		}
		counts, err := GetVoteCounts(itemType, itemID)
		vt := newVote.VoteType()
		return &newVote, counts, &vt, err

	default:
		tx.Rollback()
		return nil, VoteCounts{}, nil, err
	}
}

// recoverConcurrentCast handles a lost insert on the vote ledger. The unique
// index rejected our row, so a concurrent cast created one first; retry as an
// update of that row with the submitted direction. When no such row turns up
// the original create error stands.
func recoverConcurrentCast(userID uint, itemType string, itemID uint, value int, createErr error) (*models.Vote, VoteCounts, *string, error) {
	var raced models.Vote
	if err := db.DB.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&raced).Error; err != nil {
		return nil, VoteCounts{}, nil, createErr
	}
	if err := db.DB.Model(&raced).
		Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error; err != nil {
		return nil, VoteCounts{}, nil, err
	}
	raced.Value = value
	counts, err := GetVoteCounts(itemType, itemID)
	vt := raced.VoteType()
	return &raced, counts, &vt, err
}

// RemoveVote is the explicit removal endpoint: unlike CastVote's toggle off,
// the absence of a vote is an error here, not a no-op.
func RemoveVote(userID uint, itemType string, itemID uint) (VoteCounts, error) {
	if !ValidItemType(itemType) {
		return VoteCounts{}, ErrInvalidItemType
	}

	res := db.DB.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Delete(&models.Vote{})
	if res.Error != nil {
		return VoteCounts{}, res.Error
	}
	if res.RowsAffected == 0 {
		return VoteCounts{}, ErrVoteNotFound
	}

	return GetVoteCounts(itemType, itemID)
}

// ListVotes returns votes newest-first, scoped to one item (itemType set)
// or to one voter (userID set). Voter identities that cannot be resolved
// fall back to the Unknown User placeholder and never block the response.
func ListVotes(itemType string, itemID uint, userID uint) ([]VoteInfo, error) {
	q := db.DB.Model(&models.Vote{}).Order("created_at DESC, id DESC")
	switch {
	case itemType != "":
		if !ValidItemType(itemType) {
			return nil, ErrInvalidItemType
		}
		q = q.Where("item_type = ? AND item_id = ?", itemType, itemID)
	case userID != 0:
		q = q.Where("user_id = ?", userID)
	default:
		return nil, ErrInvalidItemType
	}

	var votes []models.Vote
	if err := q.Find(&votes).Error; err != nil {
		return nil, err
	}

	// 批量查询投票人信息
	voterIDs := make([]uint, 0, len(votes))
	for _, v := range votes {
		voterIDs = append(voterIDs, v.UserID)
	}
	voterMap := make(map[uint]models.User, len(voterIDs))
	if len(voterIDs) > 0 {
		var voters []models.User
		if err := db.DB.Where("id IN ?", voterIDs).Find(&voters).Error; err == nil {
			for _, u := range voters {
				voterMap[u.ID] = u
			}
		}
	}

	infos := make([]VoteInfo, 0, len(votes))
	for _, v := range votes {
		voter, ok := voterMap[v.UserID]
		if !ok {
			voter = models.UnknownUser()
		}
		infos = append(infos, VoteInfo{
			ID:        v.ID,
			ItemID:    v.ItemID,
			ItemType:  v.ItemType,
			VoteType:  v.VoteType(),
			Voter:     voter,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		})
	}
	return infos, nil
}

// GetVoteCounts computes {upvotes, downvotes, net} for one item from the
// live ledger state.
func GetVoteCounts(itemType string, itemID uint) (VoteCounts, error) {
	counts, err := GetVoteCountsFor(itemType, []uint{itemID})
	if err != nil {
		return VoteCounts{}, err
	}
	return counts[itemID], nil
}

// GetVoteCountsFor is the batch variant: one grouped aggregate for a page of
// items. Both the feed and the detail view read tallies through this path.
func GetVoteCountsFor(itemType string, itemIDs []uint) (map[uint]VoteCounts, error) {
	result := make(map[uint]VoteCounts, len(itemIDs))
	for _, id := range itemIDs {
		result[id] = VoteCounts{}
	}
	if len(itemIDs) == 0 {
		return result, nil
	}

	type countRow struct {
		ItemID    uint
		Upvotes   int64
		Downvotes int64
	}
	var rows []countRow
	err := db.DB.Model(&models.Vote{}).
		Select("item_id, SUM(CASE WHEN value > 0 THEN 1 ELSE 0 END) AS upvotes, SUM(CASE WHEN value < 0 THEN 1 ELSE 0 END) AS downvotes").
		Where("item_type = ? AND item_id IN ?", itemType, itemIDs).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		result[r.ItemID] = VoteCounts{
			Upvotes:   r.Upvotes,
			Downvotes: r.Downvotes,
			Net:       r.Upvotes - r.Downvotes,
		}
	}
	return result, nil
}

// GetUserVotes returns the viewer's own directions for a set of items,
// keyed by item id. A zero userID yields an empty map.
func GetUserVotes(userID uint, itemType string, itemIDs []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(itemIDs))
	if userID == 0 || len(itemIDs) == 0 {
		return result, nil
	}

	var votes []models.Vote
	err := db.DB.Where("user_id = ? AND item_type = ? AND item_id IN ?", userID, itemType, itemIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		result[v.ItemID] = v.VoteType()
	}
	return result, nil
}
