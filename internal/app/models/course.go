package models

// Course is a course students can enrol in
type Course struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Students []int64 `json:"students"` // student ids, ascending
}

// CourseFilter selects courses by exact field match. Nil fields are ignored.
type CourseFilter struct {
	ID   *int64
	Name *string
}
