package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"qanda/internal/db"
	"qanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile(t *testing.T) {
	setupTestDB(t)

	client := newTestClient(t)
	userID := idOf(t, client.signUp("profiled"))
	questionID := idOf(t, client.createQuestion("A question for the profile"))
	client.createAnswer(questionID)

	anon := newTestClient(t)
	w := anon.do(http.MethodGet, fmt.Sprintf("/users/%d", userID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)

	user := data["user"].(map[string]any)
	assert.Equal(t, "profiled", user["username"])
	assert.NotContains(t, user, "password")
	assert.EqualValues(t, 1, data["question_count"])
	assert.EqualValues(t, 1, data["answer_count"])
	recent := data["recent_questions"].([]any)
	require.Len(t, recent, 1)
	assert.EqualValues(t, questionID, recent[0].(map[string]any)["id"])

	w = anon.do(http.MethodGet, "/users/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = anon.do(http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserProfileSurfacesCountQueryFailure(t *testing.T) {
	setupTestDB(t)
	client := newTestClient(t)
	userID := idOf(t, client.signUp("profiled"))

	require.NoError(t, db.DB.Migrator().DropTable(&models.Answer{}))

	w := newTestClient(t).do(http.MethodGet, fmt.Sprintf("/users/%d", userID), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal server error", body["error"])
}
