package controllers

import (
	"database/sql"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"academy-backend/models"
	"academy-backend/provisioner"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthController handles sign-up, sign-in, tokens, and password reset.
type AuthController struct {
	DB          *sqlx.DB
	Log         *zap.Logger
	Provisioner *provisioner.Provisioner
}

func NewAuthController(db *sqlx.DB, log *zap.Logger, prov *provisioner.Provisioner) *AuthController {
	return &AuthController{DB: db, Log: log, Provisioner: prov}
}

// HealthCheck endpoint
func (ac *AuthController) HealthCheck(c *gin.Context) {
	if err := ac.DB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "academy-backend",
		"timestamp": time.Now().Unix(),
	})
}

type SignUpInput struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var input SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Email and password are required", err.Error())
		return
	}

	if !emailRegex.MatchString(input.Email) {
		security.SendValidationError(c, "Invalid email format", "Please enter a valid email address")
		return
	}

	if input.Role == "" {
		input.Role = models.RolePlayer.String()
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		security.SendValidationError(c, "Invalid role", "Role must be player, coach, or admin")
		return
	}

	// The profile table is checked before any identity is created so a
	// failed sign-up never leaves a claimable email behind. Only a
	// definitive "no row" result lets the flow proceed.
	var existingEmail string
	err = ac.DB.QueryRow(`SELECT email FROM users WHERE email = $1`, input.Email).Scan(&existingEmail)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already registered. Please use a different email or sign in."})
		return
	}
	if err != sql.ErrNoRows {
		ac.Log.Error("email availability check failed", zap.String("email", input.Email), zap.Error(err))
		security.SendDatabaseError(c, "Unable to verify email availability")
		return
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	identityID := uuid.NewString()
	_, err = ac.DB.Exec(`
		INSERT INTO identities (id, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, identityID, input.Email, string(passHash), input.FullName, role)
	if err != nil {
		ac.Log.Error("identity creation failed", zap.String("email", input.Email), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "Error creating user account. Please try again."})
		return
	}

	approved := role.AutoApproved()

	err = ac.Provisioner.Provision(c.Request.Context(), provisioner.Profile{
		ID:       identityID,
		FullName: input.FullName,
		Email:    input.Email,
		Role:     role,
		Approved: approved,
	})
	if err != nil {
		// Best-effort rollback so the identity is not orphaned.
		if _, delErr := ac.DB.Exec(`DELETE FROM identities WHERE id = $1`, identityID); delErr != nil {
			ac.Log.Error("failed to delete identity after provisioning error",
				zap.String("user_id", identityID), zap.Error(delErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user profile. Please try again later."})
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(identityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":        identityID,
			"email":     input.Email,
			"full_name": input.FullName,
			"role":      role,
			"approved":  approved,
		},
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) SignIn(c *gin.Context) {
	var input SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Email and password are required", err.Error())
		return
	}

	var identity models.Identity
	err := ac.DB.QueryRow(`
		SELECT id, email, password_hash, full_name, role
		FROM identities WHERE email = $1
	`, input.Email).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.FullName, &identity.Role)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var user models.User
	err = ac.DB.QueryRow(`
		SELECT id, email, full_name, role, approved FROM users WHERE id = $1
	`, identity.ID).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.Approved)
	if err == sql.ErrNoRows {
		// The identity exists but was never mirrored into the profile
		// table. Let the client finish profile creation.
		accessToken, refreshToken, tokenErr := ac.issueTokens(identity.ID)
		if tokenErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"needs_profile": true,
			"redirect_to":   "/create-profile",
			"accessToken":   accessToken,
			"refreshToken":  refreshToken,
		})
		return
	}
	if err != nil {
		ac.Log.Error("profile lookup failed", zap.String("user_id", identity.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user profile information"})
		return
	}

	if !user.Role.AutoApproved() && !user.Approved {
		security.SendError(c, http.StatusForbidden, security.CodePendingApproval, "Account pending approval",
			"Your account is pending approval from an administrator. You'll be notified when your account is approved", nil)
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    900,
	})
}

func (ac *AuthController) issueTokens(userID string) (string, string, error) {
	accessToken, err := security.SignAccessToken(userID)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := security.SignRefreshToken(userID)
	if err != nil {
		return "", "", err
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = ac.DB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, refreshToken, expiresAt)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	userID, err := security.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var tokenID string
	err = ac.DB.QueryRow(`
		SELECT id FROM refresh_tokens
		WHERE user_id = $1 AND token = $2 AND expires_at > CURRENT_TIMESTAMP AND revoked_at IS NULL
	`, userID, input.RefreshToken).Scan(&tokenID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	_, err = ac.DB.Exec(`UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE id = $1`, tokenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke old token"})
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    900,
	})
}

type LogoutInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input LogoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	result, err := ac.DB.Exec(`UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE token = $1 AND revoked_at IS NULL`, input.RefreshToken)
	if err != nil {
		security.SendDatabaseError(c, "Failed to logout")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required"`
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Email is required", err.Error())
		return
	}

	// Never reveal whether the email is registered.
	genericResponse := gin.H{"message": "If your email is registered, you will receive a password reset link."}

	var existingEmail string
	err := ac.DB.QueryRow(`SELECT email FROM users WHERE email = $1`, input.Email).Scan(&existingEmail)
	if err != nil {
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	resetToken := uuid.NewString()
	expiresAt := time.Now().Add(24 * time.Hour)

	_, err = ac.DB.Exec(`
		INSERT INTO password_reset_tokens (email, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			created_at = CURRENT_TIMESTAMP
	`, input.Email, resetToken, expiresAt)
	if err != nil {
		ac.Log.Error("failed to store reset token", zap.String("email", input.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process your request. Please try again."})
		return
	}

	// Mail delivery is handled outside this service; the token is only
	// logged at debug level for development setups.
	ac.Log.Debug("password reset token issued", zap.String("email", input.Email), zap.String("token", resetToken))

	c.JSON(http.StatusOK, genericResponse)
}

type ResetPasswordInput struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Password and confirm password are required", err.Error())
		return
	}

	if input.Password != input.ConfirmPassword {
		security.SendValidationError(c, "Passwords do not match", nil)
		return
	}

	var reset models.PasswordResetToken
	err := ac.DB.QueryRow(`
		SELECT email, token, expires_at FROM password_reset_tokens WHERE token = $1
	`, input.Token).Scan(&reset.Email, &reset.Token, &reset.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired password reset link. Please request a new one."})
		return
	}

	if reset.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your password reset link has expired. Please request a new one."})
		return
	}

	// Single use.
	if _, err := ac.DB.Exec(`DELETE FROM password_reset_tokens WHERE token = $1`, input.Token); err != nil {
		ac.Log.Warn("failed to delete used reset token", zap.Error(err))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var userID string
	err = ac.DB.QueryRow(`
		UPDATE identities SET password_hash = $1 WHERE email = $2 RETURNING id
	`, string(passHash), reset.Email).Scan(&userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password update failed"})
		return
	}

	// Old sessions stop working once the password changes.
	if _, err := ac.DB.Exec(`UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND revoked_at IS NULL`, userID); err != nil {
		ac.Log.Warn("failed to revoke refresh tokens after password reset", zap.String("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully. You can now sign in with your new password."})
}

type CreateProfileInput struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Role     string `json:"role"`
}

// CreateProfile provisions the users row for an authenticated identity
// that is missing one (the sign-in "needs_profile" path).
func (ac *AuthController) CreateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if input.Role == "" {
		input.Role = models.RolePlayer.String()
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		security.SendValidationError(c, "Invalid role", "Role must be player, coach, or admin")
		return
	}

	var email string
	if err := ac.DB.QueryRow(`SELECT email FROM identities WHERE id = $1`, userID).Scan(&email); err != nil {
		security.SendNotFoundError(c, "identity")
		return
	}

	err = ac.Provisioner.Provision(c.Request.Context(), provisioner.Profile{
		ID:       userID,
		FullName: input.FullName,
		Email:    email,
		Role:     role,
		Approved: role.AutoApproved(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user profile. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Profile created successfully"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	err := ac.DB.QueryRow(`
		SELECT id, email, full_name, role, approved, email_verified, avatar_url, phone, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.Approved, &user.EmailVerified,
		&user.AvatarURL, &user.Phone, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		security.SendError(c, http.StatusNotFound, security.CodeProfileNotFound, "Profile not found",
			"Your account has no profile yet. Please complete profile creation first", nil)
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

type UpdateProfileInput struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Build dynamic update query
	query := "UPDATE users SET "
	args := []interface{}{}
	argIndex := 1

	if input.FullName != nil {
		query += "full_name = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.FullName)
		argIndex++
	}
	if input.Phone != nil {
		query += "phone = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Phone)
		argIndex++
	}
	if input.AvatarURL != nil {
		query += "avatar_url = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.AvatarURL)
		argIndex++
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query += "updated_at = CURRENT_TIMESTAMP WHERE id = $" + strconv.Itoa(argIndex)
	args = append(args, userID)

	result, err := ac.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update profile")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var currentHash string
	err := ac.DB.QueryRow(`SELECT password_hash FROM identities WHERE id = $1`, userID).Scan(&currentHash)
	if err != nil {
		security.SendNotFoundError(c, "identity")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(input.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash new password"})
		return
	}

	if _, err := ac.DB.Exec(`UPDATE identities SET password_hash = $1 WHERE id = $2`, string(newHash), userID); err != nil {
		security.SendDatabaseError(c, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
