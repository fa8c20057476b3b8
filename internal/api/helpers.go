// Package api contains the HTTP handlers of the recipe service.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var registerTagNames sync.Once

// useJSONFieldNames makes binding errors report json field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the request body into req, converting binding failures
// into validation errors.
func bindJSON(c *gin.Context, req interface{}) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation(fe.Field(), "this field is required")
		case "min":
			return apperr.Validation(fe.Field(), fmt.Sprintf("must be at least %s characters", fe.Param()))
		case "max":
			return apperr.Validation(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
		default:
			return apperr.Validation(fe.Field(), "invalid value")
		}
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("", "request body is required")
	}
	return apperr.Validation("", "malformed request body")
}

// parseID reads a positive integer path parameter. Anything else is a 404,
// matching a route that does not exist.
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("resource")
	}
	return uint(id), nil
}

// paginator reads page and limit query parameters.
type paginator struct {
	defaultLimit int
	maxLimit     int
}

func (p paginator) parse(c *gin.Context) (service.Pagination, error) {
	page := service.Pagination{Page: 1, Limit: p.defaultLimit}

	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, apperr.Validation("page", "invalid page")
		}
		page.Page = n
	}
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, apperr.Validation("limit", "limit must be a positive integer")
		}
		page.Limit = n
	}
	if p.maxLimit > 0 && page.Limit > p.maxLimit {
		page.Limit = p.maxLimit
	}
	return page, nil
}

// newPage wraps results in the pagination envelope with absolute links to
// the neighbouring pages.
func newPage[T any](c *gin.Context, page service.Pagination, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if page.Limit <= 0 {
		return out
	}
	if int64(page.Page*page.Limit) < total {
		next := pageURL(c, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// HealthCheck handles health check requests
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
