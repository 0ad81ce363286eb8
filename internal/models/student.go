package models

import "time"

// Student is a learner registered at the center.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Remark    *string   `db:"remark" json:"remark"`
	Phone     *string   `db:"phone" json:"phone"`
	Gender    int       `db:"gender" json:"gender"`
	Address   *string   `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentPublic is the student shape embedded in course details.
type StudentPublic struct {
	ID      string  `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Remark  *string `db:"remark" json:"remark"`
	Phone   *string `db:"phone" json:"phone"`
	Gender  int     `db:"gender" json:"gender"`
	Address *string `db:"address" json:"address"`
}
