package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/helpers"
)

// CourseController handles course-related operations
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// bindBody decodes a JSON, urlencoded or multipart form body. Requests without a content type are read as JSON.
func bindBody(ctx *gin.Context, obj interface{}) error {
	if ctx.ContentType() == "" {
		return ctx.ShouldBindJSON(obj)
	}
	return ctx.ShouldBind(obj)
}

// ListCourses lists courses, optionally filtered
// @Summary List courses
// @Tags courses
// @Produce json
// @Param id query int false "Exact course id"
// @Param name query string false "Exact course name"
// @Success 200 {array} models.Course
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /courses/ [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	filter, err := helpers.ParseCourseFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courses, err := c.courseService.ListCourses(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, courses)
}

// GetCourse retrieves a course by ID
// @Summary Get course details
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/ [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.GetCourseByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, course)
}

// CreateCourse handles course creation
// @Summary Create a course
// @Tags courses
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} dto.ErrorResponse "Invalid course data"
// @Failure 409 {object} dto.ErrorResponse "Course already exists"
// @Router /courses/ [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := bindBody(ctx, &req); err != nil {
		middleware.HandleBindingError(ctx, err, "Invalid course data")
		return
	}

	course, err := c.courseService.CreateCourse(ctx, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, course)
}

// ReplaceCourse overwrites a course
// @Summary Replace a course
// @Tags courses
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 200 {object} models.Course
// @Failure 400 {object} dto.ErrorResponse "Invalid course data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/ [put]
func (c *CourseController) ReplaceCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateCourseRequest
	if err := bindBody(ctx, &req); err != nil {
		middleware.HandleBindingError(ctx, err, "Invalid course data")
		return
	}

	course := req.ToModel()
	course.ID = id
	updated, err := c.courseService.ReplaceCourse(ctx, course)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// UpdateCourse partially updates a course
// @Summary Update a course
// @Tags courses
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course
// @Failure 400 {object} dto.ErrorResponse "Invalid course data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/ [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateCourseRequest
	if err := bindBody(ctx, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleBindingError(ctx, err, "Invalid course data")
		return
	}

	updated, err := c.courseService.UpdateCourse(ctx, id, req.ToPatch())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// DeleteCourse deletes a course
// @Summary Delete a course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/ [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.courseService.DeleteCourse(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
