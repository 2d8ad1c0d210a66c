package handlers

import (
	"net/http"

	"qanda/internal/middleware"
	"qanda/internal/models"
	"qanda/internal/services"
	"qanda/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

type castVoteRequest struct {
	ItemID   uint   `json:"itemId" binding:"required"`
	ItemType string `json:"itemType" binding:"required"`
	VoteType string `json:"voteType" binding:"required"`
}

func voteJSON(v *models.Vote) interface{} {
	if v == nil {
		return nil
	}
	return gin.H{
		"id":         v.ID,
		"user_id":    v.UserID,
		"itemId":     v.ItemID,
		"itemType":   v.ItemType,
		"voteType":   v.VoteType(),
		"created_at": v.CreatedAt,
		"updated_at": v.UpdatedAt,
	}
}

// Cast toggles or switches the caller's vote on one item.
func (h *VoteHandler) Cast(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	vote, counts, userVoteType, err := services.CastVote(user.ID, req.ItemType, req.ItemID, req.VoteType)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"vote":         voteJSON(vote),
		"voteCounts":   counts,
		"userVoteType": userVoteType,
	})
}

// Remove is the explicit removal endpoint; a missing vote is a 404.
func (h *VoteHandler) Remove(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	itemType := c.Query("itemType")
	itemID, idOK := utils.StringToUint(c.Query("itemId"))
	if itemType == "" || !idOK {
		Fail(c, http.StatusBadRequest, "itemId and itemType are required")
		return
	}

	counts, err := services.RemoveVote(user.ID, itemType, itemID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusOK, gin.H{
		"voteCounts":   counts,
		"userVoteType": nil,
	}, "vote removed")
}

// List returns votes for one item (with counts) or for one voter.
func (h *VoteHandler) List(c *gin.Context) {
	itemIDStr := c.Query("itemId")
	itemType := c.Query("itemType")
	userIDStr := c.Query("userId")

	switch {
	case itemIDStr != "" || itemType != "":
		itemID, idOK := utils.StringToUint(itemIDStr)
		if itemType == "" || !idOK {
			Fail(c, http.StatusBadRequest, "itemId and itemType must be supplied together")
			return
		}
		votes, err := services.ListVotes(itemType, itemID, 0)
		if err != nil {
			FailFromError(c, err)
			return
		}
		counts, err := services.GetVoteCounts(itemType, itemID)
		if err != nil {
			FailFromError(c, err)
			return
		}
		OK(c, http.StatusOK, gin.H{"votes": votes, "voteCounts": counts})

	case userIDStr != "":
		userID, idOK := utils.StringToUint(userIDStr)
		if !idOK {
			Fail(c, http.StatusBadRequest, "invalid userId")
			return
		}
		votes, err := services.ListVotes("", 0, userID)
		if err != nil {
			FailFromError(c, err)
			return
		}
		OK(c, http.StatusOK, gin.H{"votes": votes})

	default:
		Fail(c, http.StatusBadRequest, "either itemId and itemType, or userId, is required")
	}
}
