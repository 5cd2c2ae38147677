package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolhub/internal/app/models/dto"
	"github.com/yigit/schoolhub/internal/app/services"
	"github.com/yigit/schoolhub/internal/middleware"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
)

// ClassController handles class lookups and the vacancy check
type ClassController struct {
	classService   services.ClassService
	vacancyService services.VacancyService
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService, vacancyService services.VacancyService) *ClassController {
	return &ClassController{
		classService:   classService,
		vacancyService: vacancyService,
	}
}

// ListClasses lists every class with its sections
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class} "Classes in numeric order"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	classes, err := c.classService.ListClasses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(classes, ""))
}

// GetClass retrieves one class
// @Summary Get class details
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "class")
	if !ok {
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class, ""))
}

// Occupancy counts Active students at a placement
// @Summary Check whether a class/section is vacant
// @Description Read-only. Shown to the operator before a promotion; the promotion itself never checks vacancy.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param section_id query int false "Section ID (required when the class has sections)"
// @Success 200 {object} dto.APIResponse{data=models.Occupancy} "Occupancy"
// @Failure 400 {object} dto.ErrorResponse "Section missing or not part of the class"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/occupancy [get]
func (c *ClassController) Occupancy(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "class")
	if !ok {
		return
	}
	sectionID, err := helpers.ParseOptionalInt64(ctx, "section_id")
	if err != nil {
		badQuery(ctx, "section_id")
		return
	}

	occupancy, err := c.vacancyService.CountOccupants(ctx.Request.Context(), id, sectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(occupancy, ""))
}
