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

// BranchController is the admin CRUD surface for academy locations.
type BranchController struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewBranchController(db *sqlx.DB, log *zap.Logger) *BranchController {
	return &BranchController{DB: db, Log: log}
}

func (brc *BranchController) ListBranches(c *gin.Context) {
	branches := []models.Branch{}
	err := brc.DB.Select(&branches, `
		SELECT id, name, location, address, created_at, updated_at
		FROM branches ORDER BY name
	`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch branches")
		return
	}

	c.JSON(http.StatusOK, branches)
}

func (brc *BranchController) GetBranch(c *gin.Context) {
	branchID := c.Param("id")

	var branch models.Branch
	err := brc.DB.Get(&branch, `
		SELECT id, name, location, address, created_at, updated_at
		FROM branches WHERE id = $1
	`, branchID)
	if err != nil {
		security.SendNotFoundError(c, "branch")
		return
	}

	c.JSON(http.StatusOK, branch)
}

type CreateBranchInput struct {
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	Location string  `json:"location" binding:"required,min=2,max=100"`
	Address  *string `json:"address"`
}

func (brc *BranchController) CreateBranch(c *gin.Context) {
	var input CreateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var branchID string
	err := brc.DB.QueryRow(`
		INSERT INTO branches (name, location, address)
		VALUES ($1, $2, $3) RETURNING id
	`, input.Name, input.Location, input.Address).Scan(&branchID)
	if err != nil {
		brc.Log.Error("failed to create branch", zap.String("name", input.Name), zap.Error(err))
		security.SendDatabaseError(c, "Failed to create branch")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": branchID, "message": "Branch created successfully"})
}

type UpdateBranchInput struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Address  *string `json:"address"`
}

func (brc *BranchController) UpdateBranch(c *gin.Context) {
	branchID := c.Param("id")

	var input UpdateBranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	query := "UPDATE branches SET "
	args := []interface{}{}
	argIndex := 1

	if input.Name != nil {
		query += "name = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Name)
		argIndex++
	}
	if input.Location != nil {
		query += "location = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Location)
		argIndex++
	}
	if input.Address != nil {
		query += "address = $" + strconv.Itoa(argIndex) + ", "
		args = append(args, *input.Address)
		argIndex++
	}

	if len(args) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	query += "updated_at = CURRENT_TIMESTAMP WHERE id = $" + strconv.Itoa(argIndex)
	args = append(args, branchID)

	result, err := brc.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update branch")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "branch")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Branch updated successfully"})
}

func (brc *BranchController) DeleteBranch(c *gin.Context) {
	branchID := c.Param("id")

	var hasSessions bool
	err := brc.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM coach_sessions WHERE branch_id = $1)`, branchID).Scan(&hasSessions)
	if err == nil && hasSessions {
		c.JSON(http.StatusConflict, gin.H{"error": "Branch has sessions and cannot be deleted"})
		return
	}

	result, err := brc.DB.Exec(`DELETE FROM branches WHERE id = $1`, branchID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete branch")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "branch")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted successfully"})
}
