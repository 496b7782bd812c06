package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("invalid " + name + ": " + raw)
	}
	return id, nil
}

// ParseCourseFilter builds a CourseFilter from the id and name query parameters.
// An empty value is treated the same as an absent one.
func ParseCourseFilter(c *gin.Context) (models.CourseFilter, error) {
	var filter models.CourseFilter

	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("id", "id must be an integer")
		}
		filter.ID = &id
	}

	if name, ok := c.GetQuery("name"); ok && name != "" {
		filter.Name = &name
	}

	return filter, nil
}
