package models

// Table names
const (
	TableCourses        = "courses"
	TableStudents       = "students"
	TableCourseStudents = "course_students"
)
