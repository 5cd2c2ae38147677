package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/models/dto"
	"github.com/yigit/schoolhub/internal/app/services"
	"github.com/yigit/schoolhub/internal/middleware"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
)

// StudentController handles the student roster and recycle bin
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// CreateStudent admits a new student
// @Summary Admit a student
// @Description Creates a student record. Name and age are derived from the name parts and date of birth.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Admission number already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(student, "Student created"))
}

// GetStudentByID retrieves a student, active or binned
// @Summary Get student details
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	student, err := c.studentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, ""))
}

// ListStudents lists the Active roster
// @Summary List students
// @Description Lists Active students, optionally narrowed to a class, a section or a name/admission number search.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param class_id query int false "Class ID"
// @Param section_id query int false "Section ID"
// @Param search query string false "Name, admission number or attendance ID fragment"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.StudentListResponse "Students retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	classID, err := helpers.ParseOptionalInt64(ctx, "class_id")
	if err != nil {
		badQuery(ctx, "class_id")
		return
	}
	sectionID, err := helpers.ParseOptionalInt64(ctx, "section_id")
	if err != nil {
		badQuery(ctx, "section_id")
		return
	}
	page, limit := helpers.ParsePaginationParams(ctx)

	students, total, err := c.studentService.List(ctx.Request.Context(), models.StudentFilter{
		ClassID:   classID,
		SectionID: sectionID,
		Search:    ctx.Query("search"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentListResponse{
		Success:    true,
		Data:       students,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	})
}

// ListBin lists soft-deleted students
// @Summary List the recycle bin
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.StudentListResponse "Binned students"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/bin [get]
func (c *StudentController) ListBin(ctx *gin.Context) {
	page, limit := helpers.ParsePaginationParams(ctx)

	students, total, err := c.studentService.ListBin(ctx.Request.Context(), page, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentListResponse{
		Success:    true,
		Data:       students,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	})
}

// SoftDeleteStudent moves a student to the bin
// @Summary Move a student to the bin
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Student moved to bin"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student is already in the bin"
// @Router /students/{id} [delete]
func (c *StudentController) SoftDeleteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.SoftDelete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student moved to bin"))
}

// RestoreStudent brings a student back from the bin
// @Summary Restore a student from the bin
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Student restored"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student is not in the bin, or its roll number was taken"
// @Router /students/{id}/restore [put]
func (c *StudentController) RestoreStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.Restore(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student restored"))
}

// PermanentlyDeleteStudent removes a binned student for good
// @Summary Permanently delete a binned student
// @Description Fails with 409 when attendance, marks, fees or promotion history still reference the student.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Student permanently deleted"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student is active, or still referenced (details carry table and constraint)"
// @Router /students/{id}/permanent [delete]
func (c *StudentController) PermanentlyDeleteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.PermanentlyDelete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student permanently deleted"))
}

// BulkSoftDelete moves several students to the bin
// @Summary Move several students to the bin
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentIDsRequest true "Student IDs"
// @Success 200 {object} dto.BulkResult "Per-student outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /students/bulk/delete [post]
func (c *StudentController) BulkSoftDelete(ctx *gin.Context) {
	var req dto.StudentIDsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ctx.JSON(http.StatusOK, c.studentService.BulkSoftDelete(ctx.Request.Context(), req.StudentIDs))
}

// BulkRestore restores several students from the bin
// @Summary Restore several students
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentIDsRequest true "Student IDs"
// @Success 200 {object} dto.BulkResult "Per-student outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /students/bulk/restore [post]
func (c *StudentController) BulkRestore(ctx *gin.Context) {
	var req dto.StudentIDsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ctx.JSON(http.StatusOK, c.studentService.BulkRestore(ctx.Request.Context(), req.StudentIDs))
}

// BulkPermanentlyDelete permanently deletes several binned students
// @Summary Permanently delete several binned students
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentIDsRequest true "Student IDs"
// @Success 200 {object} dto.BulkResult "Per-student outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /students/bulk/permanent [post]
func (c *StudentController) BulkPermanentlyDelete(ctx *gin.Context) {
	var req dto.StudentIDsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ctx.JSON(http.StatusOK, c.studentService.BulkPermanentlyDelete(ctx.Request.Context(), req.StudentIDs))
}
