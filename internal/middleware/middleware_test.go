package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "course not found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", apperrors.ErrCourseNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "course not found"},
		{"conflict", apperrors.ErrCourseAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "course with this name already exists"},
		{"validation", apperrors.NewValidationError("name", "name cannot be empty"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "name cannot be empty"},
		{"bare validation sentinel", apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
		{"bad request", apperrors.NewBadRequestError("invalid id"), http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "invalid id"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestHandleAPIError_CarriesFieldAndDetails(t *testing.T) {
	err := apperrors.ErrUnknownStudent.WithDetails(map[string]interface{}{"students": []int64{9}})

	w := serveError(err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"students":[9]`)

	w = serveError(apperrors.NewValidationError("name", "too long"))
	assert.Contains(t, w.Body.String(), `"field":"name"`)
}

type bindTarget struct {
	Name     string  `json:"name" binding:"required,max=5"`
	Students []int64 `json:"students" binding:"omitempty,dive,gt=0"`
}

func TestHandleBindingError(t *testing.T) {
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var body bindTarget
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleBindingError(c, err, "Invalid course data")
			return
		}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		body     string
		status   int
		contains string
	}{
		{"valid", `{"name":"Go"}`, http.StatusNoContent, ""},
		{"missing name", `{}`, http.StatusBadRequest, `"field":"name"`},
		{"name too long", `{"name":"abcdefg"}`, http.StatusBadRequest, "name must be at most 5 characters"},
		{"bad student id", `{"name":"Go","students":[0]}`, http.StatusBadRequest, "students[0] must be greater than 0"},
		{"wrong type", `{"name":"Go","students":"x"}`, http.StatusBadRequest, `"field":"students"`},
		{"malformed", `{"name":`, http.StatusBadRequest, "Invalid course data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/courses/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/courses/1/", "/courses/2/", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/courses/:id/", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("unmatched", "GET", "404")))
}
