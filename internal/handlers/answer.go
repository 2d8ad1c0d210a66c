package handlers

import (
	"errors"
	"net/http"

	"qanda/internal/db"
	"qanda/internal/middleware"
	"qanda/internal/models"
	"qanda/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AnswerHandler struct{}

func NewAnswerHandler() *AnswerHandler {
	return &AnswerHandler{}
}

func (h *AnswerHandler) List(c *gin.Context) {
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	sort, ok := parseSort(c, services.SortMostVoted)
	if !ok {
		return
	}

	answers, pagination, err := services.ListAnswers(questionID, services.AnswerFeedOptions{
		Page:     page,
		Limit:    limit,
		Sort:     sort,
		ViewerID: viewerID(c),
	})
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKPage(c, answers, pagination)
}

type answerRequest struct {
	Content string `json:"content" binding:"required,min=10,max=5000"`
}

func (h *AnswerHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var question models.Question
	if err := db.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrQuestionNotFound
		}
		FailFromError(c, err)
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     user.ID,
		Content:    req.Content,
	}
	if err := db.DB.Create(&answer).Error; err != nil {
		FailFromError(c, err)
		return
	}

	created, err := services.GetAnswer(answer.ID, user.ID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusCreated, created, "answer created")
}

func (h *AnswerHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrAnswerNotFound
		}
		FailFromError(c, err)
		return
	}
	if answer.UserID != user.ID {
		Fail(c, http.StatusForbidden, "you can only edit your own answer")
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := db.DB.Model(&answer).Update("content", req.Content).Error; err != nil {
		FailFromError(c, err)
		return
	}

	updated, err := services.GetAnswer(id, user.ID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusOK, updated, "answer updated")
}

func (h *AnswerHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var answer models.Answer
	if err := db.DB.First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrAnswerNotFound
		}
		FailFromError(c, err)
		return
	}
	if answer.UserID != user.ID {
		Fail(c, http.StatusForbidden, "you can only delete your own answer")
		return
	}

	// The answer's votes go with it, atomically
	tx := db.DB.Begin()
	if tx.Error != nil {
		FailFromError(c, tx.Error)
		return
	}
	if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeAnswer, id).
		Delete(&models.Vote{}).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if err := tx.Delete(&answer).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusOK, nil, "answer deleted")
}
