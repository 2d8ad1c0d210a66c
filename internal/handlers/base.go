package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"qanda/internal/middleware"
	"qanda/internal/models"
	"qanda/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Envelope helpers. Every response goes through one of these.

func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func OKMessage(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, gin.H{"success": true, "data": data, "message": message})
}

func OKPage(c *gin.Context, data interface{}, pagination services.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": pagination})
}

func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

func FailDetails(c *gin.Context, code int, message string, details interface{}) {
	c.JSON(code, gin.H{"success": false, "error": message, "details": details})
}

// FailFromError maps service and persistence errors to the HTTP taxonomy.
// Unmapped errors become a generic 500; the detail stays in the server log.
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrAnswerNotFound),
		errors.Is(err, services.ErrTopicNotFound),
		errors.Is(err, services.ErrVoteNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidItemType),
		errors.Is(err, services.ErrInvalidVoteType),
		errors.Is(err, services.ErrInvalidSort):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrTopicExists):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Fail(c, http.StatusConflict, "resource already exists")
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// currentUser returns the authenticated user loaded by the middleware, or
// nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

func viewerID(c *gin.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// parsePagination validates page/limit before any query runs. Absent values
// take the defaults; explicit values outside range are rejected.
func parsePagination(c *gin.Context) (page, limit int, ok bool) {
	page, limit = 1, services.DefaultPageSize

	if p := c.Query("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			Fail(c, http.StatusBadRequest, "page must be a positive integer")
			return 0, 0, false
		}
		page = n
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > services.MaxPageSize {
			Fail(c, http.StatusBadRequest, "limit must be an integer between 1 and 50")
			return 0, 0, false
		}
		limit = n
	}
	return page, limit, true
}

func parseSort(c *gin.Context, fallback string) (string, bool) {
	sort := c.Query("sort")
	if sort == "" {
		return fallback, true
	}
	if sort != services.SortRecent && sort != services.SortMostVoted {
		Fail(c, http.StatusBadRequest, services.ErrInvalidSort.Error())
		return "", false
	}
	return sort, true
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
