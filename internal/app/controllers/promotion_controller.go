package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolhub/internal/app/models/dto"
	"github.com/yigit/schoolhub/internal/app/services"
	"github.com/yigit/schoolhub/internal/middleware"
)

// PromotionController handles batch promotions, promotion history and roll numbering
type PromotionController struct {
	promotionService  services.PromotionService
	rollNumberService services.RollNumberService
}

// NewPromotionController creates a new PromotionController
func NewPromotionController(promotionService services.PromotionService, rollNumberService services.RollNumberService) *PromotionController {
	return &PromotionController{
		promotionService:  promotionService,
		rollNumberService: rollNumberService,
	}
}

// Promote moves a batch of students to a new class/section/academic year
// @Summary Promote students
// @Description Validates the request as a whole, then promotes each student independently.
// @Description Students that cannot be promoted are listed in errors; the others are promoted.
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PromoteRequest true "Promotion request"
// @Success 200 {object} dto.PromoteResponse "Batch outcome"
// @Failure 400 {object} dto.ErrorResponse "Request rejected, nothing was promoted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/promote [post]
func (c *PromotionController) Promote(ctx *gin.Context) {
	var req dto.PromoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.promotionService.Promote(ctx.Request.Context(), req.ToModel(), middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPromoteResponse(result))
}

// History lists a student's promotion records
// @Summary Promotion history of a student
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.PromotionRecord} "Promotion records, oldest first"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/promotions [get]
func (c *PromotionController) History(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	records, err := c.promotionService.History(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(records, ""))
}

// ReassignRollNumbers renumbers a class or section alphabetically
// @Summary Reassign roll numbers
// @Description Gives the Active students of a class (or section) roll numbers 1..n in name order. All or nothing.
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RollNumberRequest true "Scope"
// @Success 200 {object} dto.APIResponse{data=[]models.RollAssignment} "New roll numbers"
// @Failure 400 {object} dto.ErrorResponse "Invalid scope"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 500 {object} dto.ErrorResponse "Storage failure, nothing was changed"
// @Router /students/roll-numbers [post]
func (c *PromotionController) ReassignRollNumbers(ctx *gin.Context) {
	var req dto.RollNumberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	assignments, err := c.rollNumberService.Reassign(ctx.Request.Context(), req.ClassID, req.SectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignments, "Roll numbers reassigned"))
}
