package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

// AdminHandler serves the admin-gated roster and stats routes. The admin gate
// runs before every method here.
type AdminHandler struct {
	authService ports.AuthService
}

func NewAdminHandler(authService ports.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// Stats returns marketplace totals recomputed from the raw records.
//
// @Summary      Admin dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminStatsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.authService.AdminStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, adminStatsResponse{
		TotalStudents:    stats.TotalStudents,
		TotalRevenue:     stats.TotalRevenue,
		TotalEnrollments: stats.TotalEnrollments,
	})
}

// ListStudents returns all student accounts sorted by name, with purchases
// expanded to course summaries.
//
// @Summary      List all students
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.StudentView
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/admin/students [get]
func (h *AdminHandler) ListStudents(c echo.Context) error {
	students, err := h.authService.ListStudents(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, students)
}

// DeleteStudent removes a student account. Admin accounts are never matched
// through this path.
//
// @Summary      Delete a student
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(c echo.Context) error {
	err := h.authService.DeleteStudent(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Student deleted successfully"})
}

// UpdateStudent applies a partial update to a student account, optionally
// resetting the password to the documented temporary value.
//
// @Summary      Update a student
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Student id"
// @Param        body  body      updateStudentRequest  true  "Fields to update"
// @Success      200   {object}  updateStudentResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/admin/students/{id} [put]
func (h *AdminHandler) UpdateStudent(c echo.Context) error {
	var req updateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.authService.UpdateStudent(c.Request().Context(), c.Param("id"), ports.UpdateStudentInput{
		Name:          req.Name,
		Email:         req.Email,
		ResetPassword: req.ResetPassword,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, updateStudentResponse{
		Student: result.Student,
		Message: result.Message,
	})
}
