package handlers

import (
	"errors"
	"net/http"

	"qanda/internal/db"
	"qanda/internal/models"
	"qanda/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile 用户主页
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "user not found")
			return
		}
		FailFromError(c, err)
		return
	}

	var questionCount int64
	if err := db.DB.Model(&models.Question{}).Where("user_id = ?", id).Count(&questionCount).Error; err != nil {
		FailFromError(c, err)
		return
	}
	var answerCount int64
	if err := db.DB.Model(&models.Answer{}).Where("user_id = ?", id).Count(&answerCount).Error; err != nil {
		FailFromError(c, err)
		return
	}

	var recent []models.Question
	if err := db.DB.Preload("User").Preload("Topics").
		Where("user_id = ?", id).
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		FailFromError(c, err)
		return
	}
	if err := services.EnrichQuestions(recent, viewerID(c)); err != nil {
		FailFromError(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"user":             user,
		"question_count":   questionCount,
		"answer_count":     answerCount,
		"recent_questions": recent,
	})
}
