package dto

import "github.com/yigit/coursehub/internal/app/models"

// CreateCourseRequest is the body of POST /courses/ and PUT /courses/{id}/, sent as JSON or as a form
// with one students value per id.
// ID is accepted for compatibility with clients that echo it back, but ids are always server-assigned.
type CreateCourseRequest struct {
	ID       *int64  `json:"id,omitempty" form:"id"`
	Name     string  `json:"name" form:"name" binding:"required,max=256"`
	Students []int64 `json:"students" form:"students" binding:"omitempty,dive,gt=0"`
}

// UpdateCourseRequest is the body of PATCH /courses/{id}/. Absent fields are left untouched, so an
// empty body changes nothing.
type UpdateCourseRequest struct {
	Name     *string  `json:"name" form:"name" binding:"omitempty,min=1,max=256"`
	Students *[]int64 `json:"students" form:"students" binding:"omitempty,dive,gt=0"`
}

// ToModel converts the request into a course model
func (r CreateCourseRequest) ToModel() *models.Course {
	students := r.Students
	if students == nil {
		students = []int64{}
	}
	return &models.Course{Name: r.Name, Students: students}
}

// CoursePatch carries the fields of a partial update
type CoursePatch struct {
	Name     *string
	Students *[]int64
}

// ToPatch converts the request into a service-level patch
func (r UpdateCourseRequest) ToPatch() CoursePatch {
	return CoursePatch{Name: r.Name, Students: r.Students}
}
