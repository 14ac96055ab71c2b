package controllers

import (
	"net/http"

	"academy-backend/booking"
	"academy-backend/models"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// BookingController serves the availability list and performs bookings.
type BookingController struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewBookingController(db *sqlx.DB, log *zap.Logger) *BookingController {
	return &BookingController{DB: db, Log: log}
}

func (bc *BookingController) loadAvailableSlots() ([]models.SessionSlot, error) {
	slots := []models.SessionSlot{}
	err := bc.DB.Select(&slots, `
		SELECT cs.id, cs.coach_id, cs.branch_id,
		       to_char(cs.session_date, 'YYYY-MM-DD') AS session_date,
		       to_char(cs.start_time, 'HH24:MI') AS start_time,
		       to_char(cs.end_time, 'HH24:MI') AS end_time,
		       cs.status,
		       u.full_name AS coach_name,
		       COALESCE(co.specialization, '') AS coach_specialization,
		       b.name AS branch_name,
		       COALESCE(co.hourly_rate, 0) AS hourly_rate
		FROM coach_sessions cs
		JOIN users u ON u.id = cs.coach_id
		LEFT JOIN coaches co ON co.id = cs.coach_id
		JOIN branches b ON b.id = cs.branch_id
		WHERE cs.status = 'available'
		ORDER BY cs.session_date, cs.start_time
	`)
	return slots, err
}

// GetAvailability returns available slots with denormalized coach and
// branch display fields, filtered by the query parameters. Filtering
// happens in memory over the loaded list so the conjunction semantics
// stay in one tested place.
func (bc *BookingController) GetAvailability(c *gin.Context) {
	slots, err := bc.loadAvailableSlots()
	if err != nil {
		bc.Log.Error("failed to load available sessions", zap.Error(err))
		security.SendDatabaseError(c, "Failed to fetch available sessions")
		return
	}

	filters := booking.Filters{
		CoachID:  c.Query("coach_id"),
		BranchID: c.Query("branch_id"),
		Date:     c.Query("date"),
		Time:     c.Query("time"),
		Query:    c.Query("q"),
	}
	filtered := booking.Apply(slots, filters)

	coaches := []models.CoachInfo{}
	err = bc.DB.Select(&coaches, `
		SELECT co.id, u.full_name AS name,
		       COALESCE(co.specialization, '') AS specialization,
		       COALESCE(co.years_experience, 0) AS years_experience,
		       COALESCE(co.hourly_rate, 0) AS hourly_rate,
		       u.avatar_url
		FROM coaches co
		JOIN users u ON u.id = co.id
		WHERE u.is_active = true
		ORDER BY u.full_name
	`)
	if err != nil {
		bc.Log.Error("failed to load coaches", zap.Error(err))
		security.SendDatabaseError(c, "Failed to fetch coaches")
		return
	}

	branches := []models.Branch{}
	err = bc.DB.Select(&branches, `
		SELECT id, name, location, address, created_at, updated_at
		FROM branches ORDER BY name
	`)
	if err != nil {
		bc.Log.Error("failed to load branches", zap.Error(err))
		security.SendDatabaseError(c, "Failed to fetch branches")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": filtered,
		"coaches":  coaches,
		"branches": branches,
	})
}

// BookSession marks a slot booked for the caller. The status change is
// a conditional update; zero rows affected means someone else won the
// slot and the caller gets a conflict, not a success.
func (bc *BookingController) BookSession(c *gin.Context) {
	userID := c.GetString("user_id")
	slotID := c.Param("id")

	// A booking must reference a profile row; create a minimal one if
	// the account was never provisioned.
	var profileExists bool
	err := bc.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&profileExists)
	if err != nil {
		security.SendDatabaseError(c, "Unable to verify user account")
		return
	}
	if !profileExists {
		_, err = bc.DB.Exec(`
			INSERT INTO users (id, full_name, email, role, approved)
			SELECT i.id, COALESCE(NULLIF(i.full_name, ''), split_part(i.email, '@', 1)), i.email, 'player', true
			FROM identities i WHERE i.id = $1
			ON CONFLICT (id) DO NOTHING
		`, userID)
		if err != nil {
			bc.Log.Error("failed to create user record before booking",
				zap.String("user_id", userID), zap.Error(err))
			security.SendDatabaseError(c, "Unable to create user profile")
			return
		}
	}

	result, err := bc.DB.Exec(`
		UPDATE coach_sessions
		SET status = $1, player_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
	`, models.SessionBooked, userID, slotID, models.SessionAvailable)
	if err != nil {
		bc.Log.Error("booking update failed", zap.String("slot_id", slotID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to book session")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists bool
		if err := bc.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM coach_sessions WHERE id = $1)`, slotID).Scan(&exists); err == nil && !exists {
			security.SendNotFoundError(c, "session")
			return
		}
		security.SendBookingConflict(c)
		return
	}

	bc.Log.Info("session booked",
		zap.String("slot_id", slotID),
		zap.String("player_id", userID))

	slots, err := bc.loadAvailableSlots()
	if err != nil {
		bc.Log.Error("failed to refresh availability after booking", zap.Error(err))
		slots = []models.SessionSlot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Session booked successfully",
		"sessions": slots,
	})
}
