package controllers

import (
	"net/http"
	"strconv"

	"academy-backend/models"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DashboardController serves the role-specific dashboard payloads.
// Extension rows (players/coaches) are created lazily on first visit;
// sign-up only guarantees the base users row.
type DashboardController struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewDashboardController(db *sqlx.DB, log *zap.Logger) *DashboardController {
	return &DashboardController{DB: db, Log: log}
}

func (dc *DashboardController) ensurePlayerRow(userID string) error {
	_, err := dc.DB.Exec(`
		INSERT INTO players (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
	`, userID)
	return err
}

func (dc *DashboardController) ensureCoachRow(userID string) error {
	_, err := dc.DB.Exec(`
		INSERT INTO coaches (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
	`, userID)
	return err
}

type bookedSession struct {
	ID          string  `json:"id" db:"id"`
	CoachID     string  `json:"coach_id" db:"coach_id"`
	SessionDate string  `json:"session_date" db:"session_date"`
	StartTime   string  `json:"start_time" db:"start_time"`
	EndTime     string  `json:"end_time" db:"end_time"`
	CoachName   string  `json:"coach_name" db:"coach_name"`
	BranchName  string  `json:"branch_name" db:"branch_name"`
	HourlyRate  float64 `json:"hourly_rate" db:"hourly_rate"`
}

func (dc *DashboardController) PlayerDashboard(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := dc.ensurePlayerRow(userID); err != nil {
		dc.Log.Error("failed to ensure player row", zap.String("user_id", userID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to load dashboard")
		return
	}

	var player models.Player
	err := dc.DB.Get(&player, `
		SELECT id, skill_level, years_playing, goals, preferred_branch_id, created_at, updated_at
		FROM players WHERE id = $1
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load player profile")
		return
	}

	sessions := []bookedSession{}
	err = dc.DB.Select(&sessions, `
		SELECT cs.id, cs.coach_id,
		       to_char(cs.session_date, 'YYYY-MM-DD') AS session_date,
		       to_char(cs.start_time, 'HH24:MI') AS start_time,
		       to_char(cs.end_time, 'HH24:MI') AS end_time,
		       u.full_name AS coach_name,
		       b.name AS branch_name,
		       COALESCE(co.hourly_rate, 0) AS hourly_rate
		FROM coach_sessions cs
		JOIN users u ON u.id = cs.coach_id
		LEFT JOIN coaches co ON co.id = cs.coach_id
		JOIN branches b ON b.id = cs.branch_id
		WHERE cs.player_id = $1 AND cs.status = $2 AND cs.session_date >= CURRENT_DATE
		ORDER BY cs.session_date, cs.start_time
	`, userID, models.SessionBooked)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load upcoming sessions")
		return
	}

	videos := []models.PlayerVideo{}
	err = dc.DB.Select(&videos, `
		SELECT id, user_id, video_url, description, status, coach_feedback, created_at, updated_at
		FROM player_videos WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":            player,
		"upcoming_sessions": sessions,
		"videos":            videos,
	})
}

func (dc *DashboardController) CoachDashboard(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := dc.ensureCoachRow(userID); err != nil {
		dc.Log.Error("failed to ensure coach row", zap.String("user_id", userID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to load dashboard")
		return
	}

	var coach models.Coach
	err := dc.DB.Get(&coach, `
		SELECT id, specialization, years_experience, hourly_rate, bio, availability, created_at, updated_at
		FROM coaches WHERE id = $1
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load coach profile")
		return
	}

	var stats struct {
		Upcoming  int `json:"upcoming" db:"upcoming"`
		Available int `json:"available" db:"available"`
		Booked    int `json:"booked" db:"booked"`
	}
	err = dc.DB.Get(&stats, `
		SELECT COUNT(*) FILTER (WHERE session_date >= CURRENT_DATE AND status = 'booked') AS upcoming,
		       COUNT(*) FILTER (WHERE status = 'available') AS available,
		       COUNT(*) FILTER (WHERE status = 'booked') AS booked
		FROM coach_sessions WHERE coach_id = $1
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load session stats")
		return
	}

	schedules := []models.CoachSchedule{}
	err = dc.DB.Select(&schedules, `
		SELECT id, coach_id, branch_id, day_of_week,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time,
		       session_duration, created_at, updated_at
		FROM coach_schedules WHERE coach_id = $1
		ORDER BY day_of_week, start_time
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load schedules")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coach":     coach,
		"stats":     stats,
		"schedules": schedules,
	})
}

func (dc *DashboardController) AdminDashboard(c *gin.Context) {
	var counts struct {
		Players         int `json:"players" db:"players"`
		Coaches         int `json:"coaches" db:"coaches"`
		PendingApproval int `json:"pending_approval" db:"pending_approval"`
	}
	err := dc.DB.Get(&counts, `
		SELECT COUNT(*) FILTER (WHERE role = 'player') AS players,
		       COUNT(*) FILTER (WHERE role = 'coach') AS coaches,
		       COUNT(*) FILTER (WHERE approved = false AND role IN ('coach', 'admin')) AS pending_approval
		FROM users WHERE is_active = true
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load user counts")
		return
	}

	var sessionCounts struct {
		Available int `json:"available" db:"available"`
		Booked    int `json:"booked" db:"booked"`
	}
	err = dc.DB.Get(&sessionCounts, `
		SELECT COUNT(*) FILTER (WHERE status = 'available') AS available,
		       COUNT(*) FILTER (WHERE status = 'booked') AS booked
		FROM coach_sessions
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load session counts")
		return
	}

	pending := []models.User{}
	err = dc.DB.Select(&pending, `
		SELECT id, email, full_name, role, approved, email_verified, avatar_url, phone, is_active, created_at, updated_at
		FROM users
		WHERE approved = false AND role IN ('coach', 'admin') AND is_active = true
		ORDER BY created_at
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to load pending approvals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":             counts,
		"sessions":          sessionCounts,
		"pending_approvals": pending,
	})
}

type UpdatePlayerProfileInput struct {
	SkillLevel        *string `json:"skill_level"`
	YearsPlaying      *int    `json:"years_playing"`
	Goals             *string `json:"goals"`
	PreferredBranchID *string `json:"preferred_branch_id"`
}

func (dc *DashboardController) UpdatePlayerProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input UpdatePlayerProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if err := dc.ensurePlayerRow(userID); err != nil {
		security.SendDatabaseError(c, "Failed to update player profile")
		return
	}

	query := "UPDATE players SET "
	args := []interface{}{}
	argIndex := 1

	if input.SkillLevel != nil {
		query += "skill_level = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.SkillLevel)
		argIndex++
	}
	if input.YearsPlaying != nil {
		query += "years_playing = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.YearsPlaying)
		argIndex++
	}
	if input.Goals != nil {
		query += "goals = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Goals)
		argIndex++
	}
	if input.PreferredBranchID != nil {
		query += "preferred_branch_id = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.PreferredBranchID)
		argIndex++
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query += "updated_at = CURRENT_TIMESTAMP WHERE id = $" + strconv.Itoa(argIndex)
	args = append(args, userID)

	if _, err := dc.DB.Exec(query, args...); err != nil {
		security.SendDatabaseError(c, "Failed to update player profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player profile updated successfully"})
}

type UpdateCoachProfileInput struct {
	Specialization  *string  `json:"specialization"`
	YearsExperience *int     `json:"years_experience"`
	HourlyRate      *float64 `json:"hourly_rate"`
	Bio             *string  `json:"bio"`
}

func (dc *DashboardController) UpdateCoachProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input UpdateCoachProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if err := dc.ensureCoachRow(userID); err != nil {
		security.SendDatabaseError(c, "Failed to update coach profile")
		return
	}

	query := "UPDATE coaches SET "
	args := []interface{}{}
	argIndex := 1

	if input.Specialization != nil {
		query += "specialization = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Specialization)
		argIndex++
	}
	if input.YearsExperience != nil {
		query += "years_experience = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.YearsExperience)
		argIndex++
	}
	if input.HourlyRate != nil {
		query += "hourly_rate = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.HourlyRate)
		argIndex++
	}
	if input.Bio != nil {
		query += "bio = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Bio)
		argIndex++
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query += "updated_at = CURRENT_TIMESTAMP WHERE id = $" + strconv.Itoa(argIndex)
	args = append(args, userID)

	if _, err := dc.DB.Exec(query, args...); err != nil {
		security.SendDatabaseError(c, "Failed to update coach profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coach profile updated successfully"})
}
