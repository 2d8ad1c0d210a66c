package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"qanda/internal/db"
	"qanda/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// setupTestDB points the global connection at a fresh in-memory database.
// Each test gets its own named shared-cache DB so connections from the pool
// see the same data.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	db.DB = conn
}

func makeUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func makeQuestion(t *testing.T, author models.User, title string, createdAt time.Time) models.Question {
	t.Helper()
	question := models.Question{
		UserID:    author.ID,
		Title:     title,
		Content:   "Some question content that is long enough.",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&question).Error)
	return question
}

func makeAnswer(t *testing.T, question models.Question, author models.User, createdAt time.Time) models.Answer {
	t.Helper()
	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     author.ID,
		Content:    "Some answer content that is long enough.",
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.DB.Create(&answer).Error)
	return answer
}
