package models

import "time"

// CourseStatus enumerates the lifecycle of a scheduled session.
type CourseStatus string

const (
	CourseStatusNotStarted CourseStatus = "not_started"
	CourseStatusInProgress CourseStatus = "in_progress"
	CourseStatusCompleted  CourseStatus = "completed"
	CourseStatusCancelled  CourseStatus = "cancelled"
)

// ParseCourseStatus maps a raw string onto the enum. The second return is
// false for unknown values.
func ParseCourseStatus(raw string) (CourseStatus, bool) {
	switch CourseStatus(raw) {
	case CourseStatusNotStarted, CourseStatusInProgress, CourseStatusCompleted, CourseStatusCancelled:
		return CourseStatus(raw), true
	}
	return "", false
}

// Course is a scheduled session. Start and end times are kept as
// "YYYY-MM-DD HH:MM" strings, matching what the frontend submits.
type Course struct {
	ID         string       `db:"id" json:"id"`
	ScheduleID string       `db:"schedule_id" json:"schedule_id"`
	StartTime  string       `db:"start_time" json:"start_time"`
	EndTime    string       `db:"end_time" json:"end_time"`
	Address    string       `db:"address" json:"address"`
	Status     CourseStatus `db:"status" json:"status"`
	Remark     *string      `db:"remark" json:"remark"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseStudent links a course to an attending student. Duplicate pairs are
// allowed; the roster repeats a student when the caller listed it twice.
type CourseStudent struct {
	ID        string `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"course_id"`
	StudentID string `db:"student_id" json:"student_id"`
}

// CourseWithDetails is the fully enriched read shape: labels resolved through
// schedule → teacher → subject plus the embedded roster.
type CourseWithDetails struct {
	Course
	TeacherName *string         `db:"teacher_name" json:"teacher_name"`
	SubjectName *string         `db:"subject_name" json:"subject_name"`
	Students    []StudentPublic `db:"-" json:"students"`
}
