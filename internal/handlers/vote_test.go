package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"qanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteToggleOverHTTP(t *testing.T) {
	setupTestDB(t)

	owner := newTestClient(t)
	owner.signUp("owner")
	questionID := idOf(t, owner.createQuestion("A question worth voting on"))

	voter := newTestClient(t)
	voter.signUp("voter")

	// First cast creates the vote
	w := voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeUp)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "upvote", data["userVoteType"])
	counts := data["voteCounts"].(map[string]any)
	assert.EqualValues(t, 1, counts["upvotes"])
	assert.EqualValues(t, 1, counts["net"])

	// Same direction again toggles it off
	w = voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeUp)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataOf(t, w)
	assert.Nil(t, data["userVoteType"])
	assert.Nil(t, data["vote"])
	counts = data["voteCounts"].(map[string]any)
	assert.EqualValues(t, 0, counts["upvotes"])

	// Cast up then switch down
	voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeUp)
	w = voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeDown)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataOf(t, w)
	assert.Equal(t, "downvote", data["userVoteType"])
	counts = data["voteCounts"].(map[string]any)
	assert.EqualValues(t, 0, counts["upvotes"])
	assert.EqualValues(t, 1, counts["downvotes"])
	assert.EqualValues(t, -1, counts["net"])
}

func TestVoteValidationOverHTTP(t *testing.T) {
	setupTestDB(t)
	voter := newTestClient(t)
	voter.signUp("voter")

	w := voter.castVote("story", 1, models.VoteTypeUp)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = voter.castVote(models.ItemTypeQuestion, 1, "sideways")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Voting on a missing item is a 404
	w = voter.castVote(models.ItemTypeQuestion, 999, models.VoteTypeUp)
	assert.Equal(t, http.StatusNotFound, w.Code)

	anon := newTestClient(t)
	w = anon.castVote(models.ItemTypeQuestion, 1, models.VoteTypeUp)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVoteRemoveOverHTTP(t *testing.T) {
	setupTestDB(t)

	owner := newTestClient(t)
	owner.signUp("owner")
	questionID := idOf(t, owner.createQuestion("A question worth voting on"))

	voter := newTestClient(t)
	voter.signUp("voter")
	voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeDown)

	target := fmt.Sprintf("/votes?itemId=%d&itemType=question", questionID)
	w := voter.do(http.MethodDelete, target, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	counts := data["voteCounts"].(map[string]any)
	assert.EqualValues(t, 0, counts["downvotes"])

	// Removing again: nothing there
	w = voter.do(http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = voter.do(http.MethodDelete, "/votes?itemType=question", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteListOverHTTP(t *testing.T) {
	setupTestDB(t)

	owner := newTestClient(t)
	owner.signUp("owner")
	questionID := idOf(t, owner.createQuestion("A question worth voting on"))

	voter := newTestClient(t)
	voterData := voter.signUp("voter")
	voterID := idOf(t, voterData)
	voter.castVote(models.ItemTypeQuestion, questionID, models.VoteTypeUp)

	anon := newTestClient(t)
	w := anon.do(http.MethodGet, fmt.Sprintf("/votes?itemId=%d&itemType=question", questionID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	votes := data["votes"].([]any)
	require.Len(t, votes, 1)
	vote := votes[0].(map[string]any)
	assert.Equal(t, "upvote", vote["voteType"])
	voterObj := vote["voter"].(map[string]any)
	assert.Equal(t, "voter", voterObj["username"])
	counts := data["voteCounts"].(map[string]any)
	assert.EqualValues(t, 1, counts["net"])

	w = anon.do(http.MethodGet, fmt.Sprintf("/votes?userId=%d", voterID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataOf(t, w)
	assert.Len(t, data["votes"], 1)

	w = anon.do(http.MethodGet, "/votes", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = anon.do(http.MethodGet, "/votes?itemId=5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
