package controllers

import (
	"database/sql"
	"net/http"

	"academy-backend/models"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// VideoController handles player training-video submissions and the
// coach feedback loop on them.
type VideoController struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewVideoController(db *sqlx.DB, log *zap.Logger) *VideoController {
	return &VideoController{DB: db, Log: log}
}

type SubmitVideoInput struct {
	VideoURL    string  `json:"video_url" binding:"required,url"`
	Description *string `json:"description"`
}

func (vc *VideoController) SubmitVideo(c *gin.Context) {
	userID := c.GetString("user_id")

	var input SubmitVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var videoID string
	err := vc.DB.QueryRow(`
		INSERT INTO player_videos (user_id, video_url, description, status)
		VALUES ($1, $2, $3, 'pending') RETURNING id
	`, userID, input.VideoURL, input.Description).Scan(&videoID)
	if err != nil {
		vc.Log.Error("failed to submit video", zap.String("user_id", userID), zap.Error(err))
		security.SendDatabaseError(c, "Failed to submit video")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": videoID, "message": "Video submitted successfully"})
}

func (vc *VideoController) GetMyVideos(c *gin.Context) {
	userID := c.GetString("user_id")

	videos := []models.PlayerVideo{}
	err := vc.DB.Select(&videos, `
		SELECT id, user_id, video_url, description, status, coach_feedback, created_at, updated_at
		FROM player_videos WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}

type videoWithPlayer struct {
	models.PlayerVideo
	PlayerName string `json:"player_name" db:"player_name"`
}

// ListPendingVideos is the coach review queue.
func (vc *VideoController) ListPendingVideos(c *gin.Context) {
	videos := []videoWithPlayer{}
	err := vc.DB.Select(&videos, `
		SELECT v.id, v.user_id, v.video_url, v.description, v.status, v.coach_feedback,
		       v.created_at, v.updated_at, u.full_name AS player_name
		FROM player_videos v
		JOIN users u ON u.id = v.user_id
		WHERE v.status = 'pending'
		ORDER BY v.created_at
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}

type VideoFeedbackInput struct {
	Feedback string `json:"feedback" binding:"required,min=1,max=2000"`
}

func (vc *VideoController) SubmitFeedback(c *gin.Context) {
	videoID := c.Param("id")

	var input VideoFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	result, err := vc.DB.Exec(`
		UPDATE player_videos
		SET coach_feedback = $1, status = 'reviewed', updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, input.Feedback, videoID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to save feedback")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "video")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted successfully"})
}

func (vc *VideoController) DeleteVideo(c *gin.Context) {
	userID := c.GetString("user_id")
	videoID := c.Param("id")

	// Players may only delete their own videos while they are pending.
	var status string
	err := vc.DB.QueryRow(`
		SELECT status FROM player_videos WHERE id = $1 AND user_id = $2
	`, videoID, userID).Scan(&status)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "video")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete video")
		return
	}
	if status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "Reviewed videos cannot be deleted"})
		return
	}

	if _, err := vc.DB.Exec(`DELETE FROM player_videos WHERE id = $1 AND user_id = $2`, videoID, userID); err != nil {
		security.SendDatabaseError(c, "Failed to delete video")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}
