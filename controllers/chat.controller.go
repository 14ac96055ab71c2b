package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"academy-backend/config"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ChatController proxies assistant questions to an external inference
// API, tailoring the prompt to the caller's role. Upstream failures
// degrade to a canned answer instead of surfacing an error.
type ChatController struct {
	DB     *sqlx.DB
	Log    *zap.Logger
	Config config.ChatConfig
	Client *http.Client
}

func NewChatController(db *sqlx.DB, log *zap.Logger, cfg config.ChatConfig) *ChatController {
	return &ChatController{
		DB:     db,
		Log:    log,
		Config: cfg,
		Client: &http.Client{Timeout: 20 * time.Second},
	}
}

type ChatInput struct {
	Message string `json:"message" binding:"required,min=1,max=1000"`
}

type chatUpstreamRequest struct {
	Inputs string `json:"inputs"`
}

type chatUpstreamResponse []struct {
	GeneratedText string `json:"generated_text"`
}

const fallbackAnswer = "I could not reach the assistant right now. " +
	"For booking questions, check the availability page. For account issues, contact your branch admin."

func (cc *ChatController) Chat(c *gin.Context) {
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	role := "player"
	if userID := c.GetString("user_id"); userID != "" {
		var r string
		err := cc.DB.QueryRow(`SELECT role FROM users WHERE id = $1`, userID).Scan(&r)
		if err == nil {
			role = r
		} else if err != sql.ErrNoRows {
			cc.Log.Warn("chat role lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	prompt := fmt.Sprintf(
		"You are an assistant for a sports academy booking platform. The user is a %s. Answer briefly.\nUser: %s",
		role, strings.TrimSpace(input.Message),
	)

	answer, err := cc.complete(c, prompt)
	if err != nil {
		cc.Log.Warn("chat upstream failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"reply": fallbackAnswer, "degraded": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": answer})
}

func (cc *ChatController) complete(c *gin.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatUpstreamRequest{Inputs: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, cc.Config.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if cc.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cc.Config.APIKey)
	}

	resp, err := cc.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat upstream returned status %d", resp.StatusCode)
	}

	var parsed chatUpstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed) == 0 || strings.TrimSpace(parsed[0].GeneratedText) == "" {
		return "", fmt.Errorf("chat upstream returned an empty completion")
	}

	return strings.TrimSpace(parsed[0].GeneratedText), nil
}
