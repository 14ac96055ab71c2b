package models

import (
	"encoding/json"
	"time"
)

// Session status values. A slot moves available -> booked exactly once;
// the transition is guarded by a conditional update on status.
const (
	SessionAvailable = "available"
	SessionBooked    = "booked"
)

// Coach is the 1:1 extension of a user with role=coach.
type Coach struct {
	ID              string          `json:"id" db:"id"`
	Specialization  *string         `json:"specialization" db:"specialization"`
	YearsExperience *int            `json:"years_experience" db:"years_experience"`
	HourlyRate      *float64        `json:"hourly_rate" db:"hourly_rate"`
	Bio             *string         `json:"bio" db:"bio"`
	Availability    json.RawMessage `json:"availability" db:"availability"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Player is the 1:1 extension of a user with role=player.
type Player struct {
	ID                string    `json:"id" db:"id"`
	SkillLevel        *string   `json:"skill_level" db:"skill_level"`
	YearsPlaying      *int      `json:"years_playing" db:"years_playing"`
	Goals             *string   `json:"goals" db:"goals"`
	PreferredBranchID *string   `json:"preferred_branch_id" db:"preferred_branch_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Branch is a physical academy location.
type Branch struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CoachSession is a bookable half-open time slot offered by one coach
// at one branch on one date. Times are "HH:MM" strings, dates
// "YYYY-MM-DD", matching the columns.
type CoachSession struct {
	ID          string    `json:"id" db:"id"`
	CoachID     string    `json:"coach_id" db:"coach_id"`
	PlayerID    *string   `json:"player_id" db:"player_id"`
	BranchID    string    `json:"branch_id" db:"branch_id"`
	SessionDate string    `json:"session_date" db:"session_date"`
	StartTime   string    `json:"start_time" db:"start_time"`
	EndTime     string    `json:"end_time" db:"end_time"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SessionSlot is a CoachSession with the display fields the booking
// list needs, denormalized from users and branches.
type SessionSlot struct {
	ID                  string  `json:"id" db:"id"`
	CoachID             string  `json:"coach_id" db:"coach_id"`
	BranchID            string  `json:"branch_id" db:"branch_id"`
	SessionDate         string  `json:"session_date" db:"session_date"`
	StartTime           string  `json:"start_time" db:"start_time"`
	EndTime             string  `json:"end_time" db:"end_time"`
	Status              string  `json:"status" db:"status"`
	CoachName           string  `json:"coach_name" db:"coach_name"`
	CoachSpecialization string  `json:"coach_specialization" db:"coach_specialization"`
	BranchName          string  `json:"branch_name" db:"branch_name"`
	HourlyRate          float64 `json:"hourly_rate" db:"hourly_rate"`
}

// CoachInfo is the coach summary shown alongside the availability list.
type CoachInfo struct {
	ID              string  `json:"id" db:"id"`
	Name            string  `json:"name" db:"name"`
	Specialization  string  `json:"specialization" db:"specialization"`
	YearsExperience int     `json:"years_experience" db:"years_experience"`
	HourlyRate      float64 `json:"hourly_rate" db:"hourly_rate"`
	AvatarURL       *string `json:"avatar_url" db:"avatar_url"`
}

// CoachSchedule is a recurring weekly availability window. Concrete
// CoachSession slots are generated from it over a date range.
type CoachSchedule struct {
	ID              string    `json:"id" db:"id"`
	CoachID         string    `json:"coach_id" db:"coach_id"`
	BranchID        string    `json:"branch_id" db:"branch_id"`
	DayOfWeek       int       `json:"day_of_week" db:"day_of_week"`
	StartTime       string    `json:"start_time" db:"start_time"`
	EndTime         string    `json:"end_time" db:"end_time"`
	SessionDuration int       `json:"session_duration" db:"session_duration"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// PlayerVideo is a training video submitted for coach feedback.
type PlayerVideo struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	VideoURL      string    `json:"video_url" db:"video_url"`
	Description   *string   `json:"description" db:"description"`
	Status        string    `json:"status" db:"status"`
	CoachFeedback *string   `json:"coach_feedback" db:"coach_feedback"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
