package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"qanda/internal/db"
	"qanda/internal/middleware"
	"qanda/internal/router"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	db.DB = conn
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("qanda_session", store))
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

// testClient drives the HTTP surface and carries session cookies between
// requests, so one client behaves like one logged-in browser.
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	return &testClient{t: t, router: newTestRouter()}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected object data, body: %s", w.Body.String())
	return data
}

// signUp registers and leaves the client logged in.
func (c *testClient) signUp(username string) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/auth/register", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, "register: %s", w.Body.String())
	return dataOf(c.t, w)
}

func (c *testClient) createTopic(name string) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/topics", gin.H{"name": name})
	require.Equal(c.t, http.StatusCreated, w.Code, "create topic: %s", w.Body.String())
	return dataOf(c.t, w)
}

func (c *testClient) createQuestion(title string, topicIDs ...uint) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/questions", gin.H{
		"title":    title,
		"content":  "A body with enough detail to be a real question.",
		"topicIds": topicIDs,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, "create question: %s", w.Body.String())
	return dataOf(c.t, w)
}

func (c *testClient) createAnswer(questionID any) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, fmt.Sprintf("/questions/%v/answers", questionID), gin.H{
		"content": "An answer with enough detail to be useful.",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, "create answer: %s", w.Body.String())
	return dataOf(c.t, w)
}

func (c *testClient) castVote(itemType string, itemID any, voteType string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodPost, "/votes", gin.H{
		"itemId":   itemID,
		"itemType": itemType,
		"voteType": voteType,
	})
}

func idOf(t *testing.T, obj map[string]any) uint {
	t.Helper()
	id, ok := obj["id"].(float64)
	require.True(t, ok, "object has no numeric id: %v", obj)
	return uint(id)
}
