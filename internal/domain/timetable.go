package domain

import "time"

// TimetableEntry is one course slot on a student's personal timetable.
// PK: user_id, SK: entry_id. Periods are 1-based class periods, not clock
// times; the client maps them onto the campus period table.
type TimetableEntry struct {
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	EntryID     string    `json:"id" dynamodbav:"entry_id"`
	CourseTitle string    `json:"course_title" dynamodbav:"course_title"`
	DayOfWeek   int       `json:"day_of_week" dynamodbav:"day_of_week"` // 1 = Monday ... 7 = Sunday
	StartPeriod int       `json:"start_period" dynamodbav:"start_period"`
	EndPeriod   int       `json:"end_period" dynamodbav:"end_period"`
	Location    string    `json:"location" dynamodbav:"location"`
	Color       string    `json:"color" dynamodbav:"color"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type UpsertTimetableEntryRequest struct {
	CourseTitle string `json:"course_title" validate:"required"`
	DayOfWeek   int    `json:"day_of_week" validate:"required,min=1,max=7"`
	StartPeriod int    `json:"start_period" validate:"required,min=1,max=12"`
	EndPeriod   int    `json:"end_period" validate:"required,min=1,max=12"`
	Location    string `json:"location"`
	Color       string `json:"color"`
}
