package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/db"
	"Gin_postgres_redis_tool_ledger/logging"

	"github.com/gin-gonic/gin"
)

// statusFor maps ledger error kinds onto HTTP.
func statusFor(err error) int {
	var e *db.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case db.KindNotFound:
		return http.StatusNotFound
	case db.KindValidationFailed:
		if errors.Is(err, db.ErrDuplicateEmail) || errors.Is(err, db.ErrDuplicateCode) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case db.KindPreconditionFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	code, msg := "INTERNAL", "internal error"
	var e *db.Error
	if errors.As(err, &e) {
		code, msg = e.Code, e.Message
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed", "err", err)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, app.ErrorBody(code, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, app.ErrorBody("INVALID_ARGUMENT", msg))
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, app.ErrorBody("NOT_FOUND", what+" not found"))
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, app.ErrorBody("INVALID_ARGUMENT", err.Error()))
		return false
	}
	return true
}

func pathID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

func queryBool(c *gin.Context, key string) (bool, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		badRequest(c, key+" must be true or false")
		return false, false
	}
	return b, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		badRequest(c, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func queryUint(c *gin.Context, key string) (*uint, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		badRequest(c, key+" must be a positive integer")
		return nil, false
	}
	u := uint(n)
	return &u, true
}

const dateLayout = "2006-01-02"

// queryTime accepts RFC 3339 timestamps or plain dates (midnight UTC).
func queryTime(c *gin.Context, key string) (*time.Time, bool) {
	t, _, ok := parseQueryTime(c, key)
	return t, ok
}

// queryUntil reads an exclusive upper bound. A plain date names the whole day,
// so it becomes the following midnight.
func queryUntil(c *gin.Context, key string) (*time.Time, bool) {
	t, dateOnly, ok := parseQueryTime(c, key)
	if ok && t != nil && dateOnly {
		next := t.AddDate(0, 0, 1)
		t = &next
	}
	return t, ok
}

func parseQueryTime(c *gin.Context, key string) (*time.Time, bool, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, false, true
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		t = t.UTC()
		return &t, false, true
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return &t, true, true
	}
	badRequest(c, key+" must be RFC 3339 or YYYY-MM-DD")
	return nil, false, false
}

func queryPage(c *gin.Context) (db.Page, bool) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return db.Page{}, false
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return db.Page{}, false
	}
	return db.Page{Limit: limit, Offset: offset}, true
}
