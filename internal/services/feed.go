package services

import (
	"errors"
	"math"

	"qanda/internal/db"
	"qanda/internal/models"
	"qanda/internal/utils"

	"gorm.io/gorm"
)

const (
	SortRecent    = "recent"
	SortMostVoted = "most_voted"

	DefaultPageSize = 20
	MaxPageSize     = 50
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func paginationFor(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

type QuestionFeedOptions struct {
	Page      int
	Limit     int
	Sort      string
	TopicSlug string
	ViewerID  uint // 0 = anonymous
}

// ListQuestions produces one page of the question feed, annotated with
// author, topics and vote tallies. A page past the end is an empty page,
// not an error.
func ListQuestions(opts QuestionFeedOptions) ([]models.Question, Pagination, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > MaxPageSize {
		opts.Limit = DefaultPageSize
	}
	if opts.Sort == "" {
		opts.Sort = SortRecent
	}

	// Fresh builder per query so the count and the page query don't share
	// accumulated clauses.
	base := func() *gorm.DB {
		q := db.DB.Model(&models.Question{})
		if opts.TopicSlug != "" {
			q = q.Joins("JOIN question_topics ON question_topics.question_id = questions.id").
				Joins("JOIN topics ON topics.id = question_topics.topic_id").
				Where("topics.slug = ?", opts.TopicSlug)
		}
		return q
	}

	var total int64
	if err := base().Distinct("questions.id").Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	q := base().Preload("User").Preload("Topics")
	switch opts.Sort {
	case SortMostVoted:
		// Net score descending, creation time as tie-break
		q = q.Select("questions.*").
			Joins("LEFT JOIN votes ON votes.item_type = ? AND votes.item_id = questions.id", models.ItemTypeQuestion).
			Group("questions.id").
			Order("COALESCE(SUM(votes.value), 0) DESC, questions.created_at DESC, questions.id DESC")
	case SortRecent:
		q = q.Order("questions.created_at DESC, questions.id DESC")
	default:
		return nil, Pagination{}, ErrInvalidSort
	}

	questions := make([]models.Question, 0, opts.Limit)
	offset := (opts.Page - 1) * opts.Limit
	if err := q.Limit(opts.Limit).Offset(offset).Find(&questions).Error; err != nil {
		return nil, Pagination{}, err
	}

	if err := EnrichQuestions(questions, opts.ViewerID); err != nil {
		return nil, Pagination{}, err
	}

	return questions, paginationFor(opts.Page, opts.Limit, total), nil
}

// EnrichQuestions 批量填充投票数、回答数和当前用户的投票方向
func EnrichQuestions(questions []models.Question, viewerID uint) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	counts, err := GetVoteCountsFor(models.ItemTypeQuestion, ids)
	if err != nil {
		return err
	}

	type countResult struct {
		QuestionID uint
		Count      int
	}
	var results []countResult
	if err := db.DB.Model(&models.Answer{}).
		Select("question_id, COUNT(*) as count").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&results).Error; err != nil {
		return err
	}
	answerCounts := make(map[uint]int, len(results))
	for _, r := range results {
		answerCounts[r.QuestionID] = r.Count
	}

	viewerVotes, err := GetUserVotes(viewerID, models.ItemTypeQuestion, ids)
	if err != nil {
		return err
	}

	for i := range questions {
		q := &questions[i]
		c := counts[q.ID]
		q.Upvotes, q.Downvotes, q.Net = c.Upvotes, c.Downvotes, c.Net
		q.AnswerCount = answerCounts[q.ID]
		if vt, ok := viewerVotes[q.ID]; ok {
			v := vt
			q.UserVoteType = &v
		}
		if q.Topics == nil {
			q.Topics = []models.Topic{}
		}
		if q.User.ID == 0 {
			// Unresolvable author never suppresses the row
			q.User = models.UnknownUser()
		}
	}
	return nil
}

type AnswerFeedOptions struct {
	Page     int
	Limit    int
	Sort     string
	ViewerID uint
}

// ListAnswers pages the answers of one question under the same
// pagination/sort contract as the question feed. Default sort is most_voted.
func ListAnswers(questionID uint, opts AnswerFeedOptions) ([]models.Answer, Pagination, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > MaxPageSize {
		opts.Limit = DefaultPageSize
	}
	if opts.Sort == "" {
		opts.Sort = SortMostVoted
	}

	var exist int64
	if err := db.DB.Model(&models.Question{}).Where("id = ?", questionID).Count(&exist).Error; err != nil {
		return nil, Pagination{}, err
	}
	if exist == 0 {
		return nil, Pagination{}, ErrQuestionNotFound
	}

	var total int64
	if err := db.DB.Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	q := db.DB.Model(&models.Answer{}).Preload("User").
		Where("answers.question_id = ?", questionID)
	switch opts.Sort {
	case SortMostVoted:
		q = q.Select("answers.*").
			Joins("LEFT JOIN votes ON votes.item_type = ? AND votes.item_id = answers.id", models.ItemTypeAnswer).
			Group("answers.id").
			Order("COALESCE(SUM(votes.value), 0) DESC, answers.created_at DESC, answers.id DESC")
	case SortRecent:
		q = q.Order("answers.created_at DESC, answers.id DESC")
	default:
		return nil, Pagination{}, ErrInvalidSort
	}

	answers := make([]models.Answer, 0, opts.Limit)
	offset := (opts.Page - 1) * opts.Limit
	if err := q.Limit(opts.Limit).Offset(offset).Find(&answers).Error; err != nil {
		return nil, Pagination{}, err
	}

	if err := EnrichAnswers(answers, opts.ViewerID); err != nil {
		return nil, Pagination{}, err
	}

	return answers, paginationFor(opts.Page, opts.Limit, total), nil
}

// EnrichAnswers 批量填充投票数、渲染内容和当前用户的投票方向
func EnrichAnswers(answers []models.Answer, viewerID uint) error {
	if len(answers) == 0 {
		return nil
	}

	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}

	counts, err := GetVoteCountsFor(models.ItemTypeAnswer, ids)
	if err != nil {
		return err
	}
	viewerVotes, err := GetUserVotes(viewerID, models.ItemTypeAnswer, ids)
	if err != nil {
		return err
	}

	for i := range answers {
		a := &answers[i]
		c := counts[a.ID]
		a.Upvotes, a.Downvotes, a.Net = c.Upvotes, c.Downvotes, c.Net
		if vt, ok := viewerVotes[a.ID]; ok {
			v := vt
			a.UserVoteType = &v
		}
		a.ContentHTML = utils.RenderMarkdown(a.Content)
		if a.User.ID == 0 {
			a.User = models.UnknownUser()
		}
	}
	return nil
}

// GetQuestionDetail loads one question with its answers, tallies and the
// viewer's own vote directions.
func GetQuestionDetail(id uint, viewerID uint) (*models.Question, error) {
	var question models.Question
	if err := db.DB.Preload("User").Preload("Topics").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	page := []models.Question{question}
	if err := EnrichQuestions(page, viewerID); err != nil {
		return nil, err
	}
	question = page[0]
	question.ContentHTML = utils.RenderMarkdown(question.Content)

	// The detail view carries every answer, so the list can never disagree
	// with the answer count.
	answers := make([]models.Answer, 0)
	for p := 1; ; p++ {
		batch, pagination, err := ListAnswers(id, AnswerFeedOptions{
			Page:     p,
			Limit:    MaxPageSize,
			Sort:     SortMostVoted,
			ViewerID: viewerID,
		})
		if err != nil {
			return nil, err
		}
		answers = append(answers, batch...)
		if p >= pagination.TotalPages {
			break
		}
	}
	question.Answers = answers

	return &question, nil
}

// GetAnswer loads one answer enriched with tallies and rendered content.
func GetAnswer(id uint, viewerID uint) (*models.Answer, error) {
	var answer models.Answer
	if err := db.DB.Preload("User").First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	page := []models.Answer{answer}
	if err := EnrichAnswers(page, viewerID); err != nil {
		return nil, err
	}
	answer = page[0]
	return &answer, nil
}
