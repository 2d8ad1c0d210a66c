package handlers

import (
	"errors"
	"net/http"
	"strings"

	"qanda/internal/db"
	"qanda/internal/models"
	"qanda/internal/services"
	"qanda/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TopicHandler struct{}

func NewTopicHandler() *TopicHandler {
	return &TopicHandler{}
}

// fillQuestionCounts 批量填充话题下的问题数量
func fillQuestionCounts(topics []models.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	topicIDs := make([]uint, len(topics))
	for i, t := range topics {
		topicIDs[i] = t.ID
	}

	type countResult struct {
		TopicID uint
		Count   int
	}
	var results []countResult
	if err := db.DB.Table("question_topics").
		Select("topic_id, COUNT(*) as count").
		Where("topic_id IN ?", topicIDs).
		Group("topic_id").
		Scan(&results).Error; err != nil {
		return err
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.TopicID] = r.Count
	}

	for i := range topics {
		topics[i].QuestionCount = countMap[topics[i].ID]
	}
	return nil
}

func (h *TopicHandler) List(c *gin.Context) {
	var topics []models.Topic
	if err := db.DB.Order("name ASC").Find(&topics).Error; err != nil {
		FailFromError(c, err)
		return
	}

	if err := fillQuestionCounts(topics); err != nil {
		FailFromError(c, err)
		return
	}

	OK(c, http.StatusOK, topics)
}

type createTopicRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

func (h *TopicHandler) Create(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailDetails(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	slug := utils.Slugify(name)
	if slug == "" {
		Fail(c, http.StatusBadRequest, "topic name must contain at least one word")
		return
	}

	// Name and slug are each globally unique
	var existing models.Topic
	err := db.DB.Where("name = ? OR slug = ?", name, slug).First(&existing).Error
	if err == nil {
		FailFromError(c, services.ErrTopicExists)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		FailFromError(c, err)
		return
	}

	topic := models.Topic{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
	}
	if err := db.DB.Create(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			FailFromError(c, services.ErrTopicExists)
			return
		}
		FailFromError(c, err)
		return
	}

	OKMessage(c, http.StatusCreated, topic, "topic created")
}

// Detail returns the topic plus its questions, same pagination and sort
// contract as the question feed.
func (h *TopicHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	var topic models.Topic
	if err := db.DB.Where("slug = ?", slug).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrTopicNotFound
		}
		FailFromError(c, err)
		return
	}

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
		TopicSlug: topic.Slug,
		ViewerID:  viewerID(c),
	})
	if err != nil {
		FailFromError(c, err)
		return
	}

	topic.QuestionCount = int(pagination.Total)

	OKPage(c, gin.H{"topic": topic, "questions": questions}, pagination)
}
