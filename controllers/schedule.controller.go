package controllers

import (
	"database/sql"
	"net/http"
	"time"

	"academy-backend/booking"
	"academy-backend/models"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ScheduleController manages coach weekly schedules and the concrete
// session slots generated from them.
type ScheduleController struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewScheduleController(db *sqlx.DB, log *zap.Logger) *ScheduleController {
	return &ScheduleController{DB: db, Log: log}
}

type CreateScheduleInput struct {
	BranchID        string `json:"branch_id" binding:"required,uuid"`
	DayOfWeek       *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	SessionDuration int    `json:"session_duration" binding:"omitempty,min=15,max=180"`
}

func (sc *ScheduleController) CreateSchedule(c *gin.Context) {
	coachID := c.GetString("user_id")

	var input CreateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var branchExists bool
	err := sc.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, input.BranchID).Scan(&branchExists)
	if err != nil || !branchExists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Branch not found"})
		return
	}

	var overlapping bool
	err = sc.DB.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM coach_schedules
			WHERE coach_id = $1 AND day_of_week = $2
			AND (
				(start_time <= $3 AND end_time > $3) OR
				(start_time < $4 AND end_time >= $4) OR
				(start_time >= $3 AND end_time <= $4)
			)
		)
	`, coachID, *input.DayOfWeek, input.StartTime, input.EndTime).Scan(&overlapping)
	if err == nil && overlapping {
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule overlaps with existing schedule"})
		return
	}

	if input.SessionDuration == 0 {
		input.SessionDuration = 60
	}

	// Reject windows the generator cannot expand.
	if _, err := booking.ExpandWindow(input.StartTime, input.EndTime, input.SessionDuration); err != nil {
		security.SendValidationError(c, "Invalid schedule window", err.Error())
		return
	}

	var scheduleID string
	err = sc.DB.QueryRow(`
		INSERT INTO coach_schedules (coach_id, branch_id, day_of_week, start_time, end_time, session_duration)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, coachID, input.BranchID, *input.DayOfWeek, input.StartTime, input.EndTime, input.SessionDuration).Scan(&scheduleID)
	if err != nil {
		sc.Log.Error("failed to create schedule", zap.String("coach_id", coachID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to create schedule")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": scheduleID, "message": "Schedule created successfully"})
}

func (sc *ScheduleController) GetSchedules(c *gin.Context) {
	coachID := c.Query("coach_id")
	if coachID == "" {
		coachID = c.GetString("user_id")
	}

	schedules := []models.CoachSchedule{}
	err := sc.DB.Select(&schedules, `
		SELECT id, coach_id, branch_id, day_of_week,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time,
		       session_duration, created_at, updated_at
		FROM coach_schedules
		WHERE coach_id = $1
		ORDER BY day_of_week, start_time
	`, coachID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch schedules")
		return
	}

	c.JSON(http.StatusOK, schedules)
}

func (sc *ScheduleController) DeleteSchedule(c *gin.Context) {
	coachID := c.GetString("user_id")
	scheduleID := c.Param("id")

	result, err := sc.DB.Exec(`DELETE FROM coach_schedules WHERE id = $1 AND coach_id = $2`, scheduleID, coachID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete schedule")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

type GenerateSessionsInput struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// GenerateSessions expands the caller's weekly schedules into concrete
// bookable slots over a date range. Slots that already exist are left
// untouched.
func (sc *ScheduleController) GenerateSessions(c *gin.Context) {
	coachID := c.GetString("user_id")

	var input GenerateSessionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		security.SendValidationError(c, "Invalid start_date format", "Expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		security.SendValidationError(c, "Invalid end_date format", "Expected YYYY-MM-DD")
		return
	}
	if endDate.Before(startDate) {
		security.SendValidationError(c, "end_date is before start_date", nil)
		return
	}
	if endDate.Sub(startDate) > 31*24*time.Hour {
		security.SendValidationError(c, "Date range too large", "Generate at most 31 days at a time")
		return
	}

	schedules := []models.CoachSchedule{}
	err = sc.DB.Select(&schedules, `
		SELECT id, coach_id, branch_id, day_of_week,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time,
		       session_duration, created_at, updated_at
		FROM coach_schedules WHERE coach_id = $1
	`, coachID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch schedules")
		return
	}

	created := 0
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		for _, schedule := range schedules {
			if int(date.Weekday()) != schedule.DayOfWeek {
				continue
			}

			windows, err := booking.ExpandWindow(schedule.StartTime, schedule.EndTime, schedule.SessionDuration)
			if err != nil {
				sc.Log.Warn("skipping unexpandable schedule",
					zap.String("schedule_id", schedule.ID), zap.Error(err))
				continue
			}

			for _, w := range windows {
				result, err := sc.DB.Exec(`
					INSERT INTO coach_sessions (coach_id, branch_id, session_date, start_time, end_time, status)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (coach_id, session_date, start_time) DO NOTHING
				`, coachID, schedule.BranchID, date.Format("2006-01-02"), w.Start, w.End, models.SessionAvailable)
				if err != nil {
					sc.Log.Error("failed to insert generated session",
						zap.String("coach_id", coachID), zap.Error(err))
					security.SendDatabaseError(c, "Failed to generate sessions")
					return
				}
				if n, _ := result.RowsAffected(); n > 0 {
					created++
				}
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sessions generated successfully",
		"created": created,
	})
}

type CreateSessionInput struct {
	BranchID    string `json:"branch_id" binding:"required,uuid"`
	SessionDate string `json:"session_date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
}

// CreateSession adds a single ad-hoc bookable slot.
func (sc *ScheduleController) CreateSession(c *gin.Context) {
	coachID := c.GetString("user_id")

	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if _, err := time.Parse("2006-01-02", input.SessionDate); err != nil {
		security.SendValidationError(c, "Invalid session_date format", "Expected YYYY-MM-DD")
		return
	}

	if err := booking.ValidateWindow(input.StartTime, input.EndTime); err != nil {
		security.SendValidationError(c, "Invalid session window", err.Error())
		return
	}

	var branchExists bool
	err := sc.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, input.BranchID).Scan(&branchExists)
	if err != nil || !branchExists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Branch not found"})
		return
	}

	var sessionID string
	err = sc.DB.QueryRow(`
		INSERT INTO coach_sessions (coach_id, branch_id, session_date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (coach_id, session_date, start_time) DO NOTHING
		RETURNING id
	`, coachID, input.BranchID, input.SessionDate, input.StartTime, input.EndTime, models.SessionAvailable).Scan(&sessionID)
	if err == sql.ErrNoRows {
		// No row returned means the conflict target fired.
		c.JSON(http.StatusConflict, gin.H{"error": "A session already exists at this time"})
		return
	}
	if err != nil {
		sc.Log.Error("failed to create session", zap.String("coach_id", coachID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": sessionID, "message": "Session created successfully"})
}

// GetCoachSessions lists the caller's own slots, booked and available,
// with the booked player's name where present.
func (sc *ScheduleController) GetCoachSessions(c *gin.Context) {
	coachID := c.GetString("user_id")

	type coachSession struct {
		models.CoachSession
		PlayerName *string `json:"player_name" db:"player_name"`
		BranchName string  `json:"branch_name" db:"branch_name"`
	}

	sessions := []coachSession{}
	err := sc.DB.Select(&sessions, `
		SELECT cs.id, cs.coach_id, cs.player_id, cs.branch_id,
		       to_char(cs.session_date, 'YYYY-MM-DD') AS session_date,
		       to_char(cs.start_time, 'HH24:MI') AS start_time,
		       to_char(cs.end_time, 'HH24:MI') AS end_time,
		       cs.status, cs.created_at, cs.updated_at,
		       p.full_name AS player_name,
		       b.name AS branch_name
		FROM coach_sessions cs
		LEFT JOIN users p ON p.id = cs.player_id
		JOIN branches b ON b.id = cs.branch_id
		WHERE cs.coach_id = $1
		ORDER BY cs.session_date, cs.start_time
	`, coachID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}
