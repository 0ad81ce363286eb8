package models

import "time"

// Teacher is a tutor employed by the center. Gender is 0 for female, 1 for male.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Remark    string    `db:"remark" json:"remark"`
	SpellName string    `db:"spell_name" json:"spell_name"`
	Gender    int       `db:"gender" json:"gender"`
	Phone     *string   `db:"phone" json:"phone"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherWithSubject is the read shape with the subject label resolved.
// SubjectName stays nil when the referenced subject row is gone.
type TeacherWithSubject struct {
	Teacher
	SubjectName *string `db:"subject_name" json:"subject_name"`
}
