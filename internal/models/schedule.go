package models

import "time"

// Schedule is a fee plan binding a teacher to an hour block and a price.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Hours     int       `db:"hours" json:"hours"`
	Fee       float64   `db:"fee" json:"fee"`
	Remark    *string   `db:"remark" json:"remark"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleWithTeacher resolves the teacher and, through it, the subject label.
// A broken link anywhere in the chain leaves the dependent labels nil.
type ScheduleWithTeacher struct {
	Schedule
	TeacherName *string `db:"teacher_name" json:"teacher_name"`
	SubjectName *string `db:"subject_name" json:"subject_name"`
}
