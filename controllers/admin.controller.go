package controllers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"academy-backend/models"
	"academy-backend/provisioner"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminController covers user management and the operational utilities
// reserved for administrators.
type AdminController struct {
	DB          *sqlx.DB
	Log         *zap.Logger
	Provisioner *provisioner.Provisioner
}

func NewAdminController(db *sqlx.DB, log *zap.Logger, prov *provisioner.Provisioner) *AdminController {
	return &AdminController{DB: db, Log: log, Provisioner: prov}
}

// ListUsers supports filtering by role, approval state, and a free-text
// search over name and email.
func (ac *AdminController) ListUsers(c *gin.Context) {
	query := `
		SELECT id, email, full_name, role, approved, email_verified, avatar_url, phone, is_active, created_at, updated_at
		FROM users WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if role := c.Query("role"); role != "" {
		parsed, err := models.ParseRole(role)
		if err != nil {
			security.SendValidationError(c, "Invalid role filter", err.Error())
			return
		}
		query += " AND role = $" + strconv.Itoa(argIndex)
		args = append(args, parsed)
		argIndex++
	}

	if approved := c.Query("approved"); approved != "" {
		value, err := strconv.ParseBool(approved)
		if err != nil {
			security.SendValidationError(c, "Invalid approved filter", "Expected true or false")
			return
		}
		query += " AND approved = $" + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	if search := strings.TrimSpace(c.Query("q")); search != "" {
		query += " AND (full_name ILIKE $" + strconv.Itoa(argIndex) + " OR email ILIKE $" + strconv.Itoa(argIndex) + ")"
		args = append(args, "%"+search+"%")
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	users := []models.User{}
	if err := ac.DB.Select(&users, query, args...); err != nil {
		security.SendDatabaseError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, users)
}

func (ac *AdminController) ApproveUser(c *gin.Context) {
	userID := c.Param("id")

	result, err := ac.DB.Exec(`
		UPDATE users SET approved = true, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND is_active = true
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to approve user")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "user")
		return
	}

	ac.Log.Info("user approved", zap.String("user_id", userID), zap.String("approved_by", c.GetString("user_id")))
	c.JSON(http.StatusOK, gin.H{"message": "User approved successfully"})
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	userID := c.Param("id")

	var input UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		security.SendValidationError(c, "Invalid role", err.Error())
		return
	}

	// A role change resets approval unless the new role self-approves.
	result, err := ac.DB.Exec(`
		UPDATE users SET role = $1, approved = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND is_active = true
	`, role, role.AutoApproved(), userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update role")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}

// DeactivateUser soft-deletes. The identity and profile rows stay so
// historical sessions keep their references.
func (ac *AdminController) DeactivateUser(c *gin.Context) {
	userID := c.Param("id")

	if userID == c.GetString("user_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot deactivate your own account"})
		return
	}

	result, err := ac.DB.Exec(`
		UPDATE users SET is_active = false, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to deactivate user")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "user")
		return
	}

	// Revoke outstanding sessions so the deactivation takes effect at
	// the next token refresh.
	if _, err := ac.DB.Exec(`DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		ac.Log.Warn("failed to revoke refresh tokens", zap.String("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}

func (ac *AdminController) ReactivateUser(c *gin.Context) {
	userID := c.Param("id")

	result, err := ac.DB.Exec(`
		UPDATE users SET is_active = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to reactivate user")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User reactivated successfully"})
}

type CreateAdminInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
}

// CreateAdmin provisions a pre-approved, email-confirmed admin account
// in one step.
func (ac *AdminController) CreateAdmin(c *gin.Context) {
	var input CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing string
	err := ac.DB.QueryRow(`SELECT email FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}
	if err != sql.ErrNoRows {
		security.SendDatabaseError(c, "Failed to check existing users")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	adminID := uuid.NewString()
	_, err = ac.DB.Exec(`
		INSERT INTO identities (id, email, password_hash, full_name, role, email_confirmed_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	`, adminID, email, string(hash), input.FullName, models.RoleAdmin)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create admin identity")
		return
	}

	err = ac.Provisioner.Provision(c.Request.Context(), provisioner.Profile{
		ID:       adminID,
		Email:    email,
		FullName: input.FullName,
		Role:     models.RoleAdmin,
		Approved: true,
	})
	if err != nil {
		ac.Log.Error("admin profile provisioning failed", zap.String("admin_id", adminID), zap.Error(err))
		if _, delErr := ac.DB.Exec(`DELETE FROM identities WHERE id = $1`, adminID); delErr != nil {
			ac.Log.Error("identity rollback failed", zap.String("admin_id", adminID), zap.Error(delErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision admin profile"})
		return
	}

	if _, err := ac.DB.Exec(`
		UPDATE users SET email_verified = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, adminID); err != nil {
		ac.Log.Warn("failed to mark admin email verified", zap.String("admin_id", adminID), zap.Error(err))
	}

	ac.Log.Info("admin account created", zap.String("admin_id", adminID), zap.String("created_by", c.GetString("user_id")))
	c.JSON(http.StatusCreated, gin.H{"id": adminID, "message": "Admin created successfully"})
}

// VerifyAllEmails confirms every unconfirmed identity and mirrors the
// flag onto the profiles. Meant for environments without a mail sender.
func (ac *AdminController) VerifyAllEmails(c *gin.Context) {
	result, err := ac.DB.Exec(`
		UPDATE identities SET email_confirmed_at = CURRENT_TIMESTAMP
		WHERE email_confirmed_at IS NULL
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to confirm identities")
		return
	}
	confirmed, _ := result.RowsAffected()

	if _, err := ac.DB.Exec(`
		UPDATE users SET email_verified = true, updated_at = CURRENT_TIMESTAMP
		WHERE email_verified = false
	`); err != nil {
		security.SendDatabaseError(c, "Failed to update profiles")
		return
	}

	ac.Log.Info("bulk email verification", zap.Int64("confirmed", confirmed), zap.String("admin_id", c.GetString("user_id")))
	c.JSON(http.StatusOK, gin.H{"message": "All emails verified", "confirmed": confirmed})
}

// ConfirmUserEmail confirms a single identity and its profile mirror.
func (ac *AdminController) ConfirmUserEmail(c *gin.Context) {
	userID := c.Param("id")

	result, err := ac.DB.Exec(`
		UPDATE identities SET email_confirmed_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND email_confirmed_at IS NULL
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to confirm email")
		return
	}

	var exists bool
	if err := ac.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM identities WHERE id = $1)`, userID).Scan(&exists); err != nil || !exists {
		security.SendNotFoundError(c, "user")
		return
	}

	if _, err := ac.DB.Exec(`
		UPDATE users SET email_verified = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, userID); err != nil {
		security.SendDatabaseError(c, "Failed to update profile")
		return
	}

	confirmed, _ := result.RowsAffected()
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed", "already_confirmed": confirmed == 0})
}
