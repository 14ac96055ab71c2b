package security

import (
	"database/sql"
	"net/http"
	"strings"

	"academy-backend/models"

	"github.com/gin-gonic/gin"
)

// Database is the minimal query surface the middleware needs. Handlers
// pass their own handle in; there is no package-level connection.
type Database interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// AuthMiddleware verifies the bearer token and checks the account is
// still active. Sets "user_id" on the context.
func AuthMiddleware(db Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			SendError(c, http.StatusUnauthorized, CodeMissingToken, "Authentication required",
				"Please provide a valid authorization token in the request header", nil)
			c.Abort()
			return
		}

		tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")

		userID, err := VerifyAccessToken(tokenStr)
		if err != nil {
			SendError(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid or expired token",
				"The provided token is invalid, expired, or malformed. Please login again to get a new token", nil)
			c.Abort()
			return
		}

		var exists bool
		err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM identities WHERE id = $1)`, userID).Scan(&exists)
		if err != nil {
			SendError(c, http.StatusInternalServerError, CodeAuthVerificationError, "Authentication verification failed",
				"Unable to verify user status. Please try again later", nil)
			c.Abort()
			return
		}
		if !exists {
			SendError(c, http.StatusUnauthorized, CodeUserNotFoundOrInactive, "User account not found or inactive",
				"Your account is not found or has been deactivated. Please contact support", nil)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// RequireRole gates an endpoint on the caller's profile role. Coaches
// and admins must also be approved. Admins pass every role check.
func RequireRole(db Database, expectedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		if userID == "" {
			SendError(c, http.StatusUnauthorized, CodeUserNotAuthenticated, "User not authenticated",
				"User authentication is required to access this resource", nil)
			c.Abort()
			return
		}

		var roleStr string
		var approved bool
		err := db.QueryRow(`SELECT role, approved FROM users WHERE id = $1 AND is_active = true`, userID).Scan(&roleStr, &approved)
		if err == sql.ErrNoRows {
			SendError(c, http.StatusForbidden, CodeProfileNotFound, "Profile not found",
				"Your account has no profile yet. Please complete profile creation first", nil)
			c.Abort()
			return
		}
		if err != nil {
			SendError(c, http.StatusInternalServerError, CodePermissionCheckError, "Failed to check user permissions",
				"Unable to verify user permissions. Please try again later", nil)
			c.Abort()
			return
		}

		role, err := models.ParseRole(roleStr)
		if err != nil {
			SendError(c, http.StatusInternalServerError, CodePermissionCheckError, "Failed to check user permissions",
				"Unable to verify user permissions. Please try again later", nil)
			c.Abort()
			return
		}

		if !role.AutoApproved() && !approved {
			SendError(c, http.StatusForbidden, CodePendingApproval, "Account pending approval",
				"Your account is pending approval from an administrator", nil)
			c.Abort()
			return
		}

		if role == models.RoleAdmin {
			c.Set("role", role)
			c.Next()
			return
		}

		for _, expected := range expectedRoles {
			if role == expected {
				c.Set("role", role)
				c.Next()
				return
			}
		}

		roleNames := make([]string, len(expectedRoles))
		for i, r := range expectedRoles {
			roleNames[i] = r.String()
		}

		SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions",
			"Access denied. This resource requires one of: "+strings.Join(roleNames, ", "),
			gin.H{
				"required_roles": roleNames,
				"user_role":      role,
			})
		c.Abort()
	}
}

// CORSMiddleware allows browser clients from any origin; credentials
// are carried in the Authorization header, not cookies.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowOrigin := "*"
		if origin != "" {
			allowOrigin = origin
		}

		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin, Cache-Control")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
