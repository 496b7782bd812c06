package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	BirthDate Date   `json:"birth_date" db:"birth_date"`
}
