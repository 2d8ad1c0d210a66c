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

type QuestionHandler struct{}

func NewQuestionHandler() *QuestionHandler {
	return &QuestionHandler{}
}

func (h *QuestionHandler) List(c *gin.Context) {
	page, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	sort, ok := parseSort(c, services.SortRecent)
	if !ok {
		return
	}

	questions, pagination, err := services.ListQuestions(services.QuestionFeedOptions{
		Page:      page,
		Limit:     limit,
		Sort:      sort,
		TopicSlug: c.Query("topic"),
		ViewerID:  viewerID(c),
	})
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKPage(c, questions, pagination)
}

type createQuestionRequest struct {
	Title    string `json:"title" binding:"required,min=5,max=300"`
	Content  string `json:"content" binding:"required,min=10,max=5000"`
	TopicIDs []uint `json:"topicIds"`
}

// loadTopics resolves topic ids, failing if any is unknown. Runs before any
// mutation so a bad id leaves nothing half-applied.
func loadTopics(topicIDs []uint) ([]models.Topic, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}

	seen := make(map[uint]bool, len(topicIDs))
	unique := make([]uint, 0, len(topicIDs))
	for _, id := range topicIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var topics []models.Topic
	if err := db.DB.Where("id IN ?", unique).Find(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) != len(unique) {
		return nil, services.ErrTopicNotFound
	}
	return topics, nil
}

func (h *QuestionHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	topics, err := loadTopics(req.TopicIDs)
	if err != nil {
		FailFromError(c, err)
		return
	}

	// Question and its topic links are written in one transaction
	question := models.Question{
		UserID:  user.ID,
		Title:   req.Title,
		Content: req.Content,
		Topics:  topics,
	}
	if err := db.DB.Create(&question).Error; err != nil {
		FailFromError(c, err)
		return
	}

	// Re-read the stored row once the write is durable
	created, err := services.GetQuestionDetail(question.ID, user.ID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusCreated, created, "question created")
}

func (h *QuestionHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	question, err := services.GetQuestionDetail(id, viewerID(c))
	if err != nil {
		FailFromError(c, err)
		return
	}

	OK(c, http.StatusOK, question)
}

type updateQuestionRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=5,max=300"`
	Content  *string `json:"content" binding:"omitempty,min=10,max=5000"`
	TopicIDs *[]uint `json:"topicIds"`
}

func (h *QuestionHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Existence first, then ownership
	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrQuestionNotFound
		}
		FailFromError(c, err)
		return
	}
	if question.UserID != user.ID {
		Fail(c, http.StatusForbidden, "you can only edit your own question")
		return
	}

	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var topics []models.Topic
	if req.TopicIDs != nil {
		var err error
		topics, err = loadTopics(*req.TopicIDs)
		if err != nil {
			FailFromError(c, err)
			return
		}
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		FailFromError(c, tx.Error)
		return
	}
	if len(updates) > 0 {
		if err := tx.Model(&question).Updates(updates).Error; err != nil {
			tx.Rollback()
			FailFromError(c, err)
			return
		}
	}
	if req.TopicIDs != nil {
		if err := tx.Model(&question).Association("Topics").Replace(&topics); err != nil {
			tx.Rollback()
			FailFromError(c, err)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		FailFromError(c, err)
		return
	}

	updated, err := services.GetQuestionDetail(id, user.ID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusOK, updated, "question updated")
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var question models.Question
	if err := db.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrQuestionNotFound
		}
		FailFromError(c, err)
		return
	}
	if question.UserID != user.ID {
		Fail(c, http.StatusForbidden, "you can only delete your own question")
		return
	}

	var answerIDs []uint
	if err := db.DB.Model(&models.Answer{}).Where("question_id = ?", id).
		Pluck("id", &answerIDs).Error; err != nil {
		FailFromError(c, err)
		return
	}

	// Cascade is one transaction: answers, votes on the question and on
	// each of its answers, topic links, then the question itself.
	tx := db.DB.Begin()
	if tx.Error != nil {
		FailFromError(c, tx.Error)
		return
	}
	if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeQuestion, id).
		Delete(&models.Vote{}).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if len(answerIDs) > 0 {
		if err := tx.Where("item_type = ? AND item_id IN ?", models.ItemTypeAnswer, answerIDs).
			Delete(&models.Vote{}).Error; err != nil {
			tx.Rollback()
			FailFromError(c, err)
			return
		}
	}
	if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if err := tx.Exec("DELETE FROM question_topics WHERE question_id = ?", id).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if err := tx.Delete(&models.Question{}, id).Error; err != nil {
		tx.Rollback()
		FailFromError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusOK, nil, "question deleted")
}
