package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

// CourseHandler serves the catalog, purchase, and lesson routes.
type CourseHandler struct {
	courseService ports.CourseService
}

func NewCourseHandler(courseService ports.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// List returns the full public catalog. No authentication required.
//
// @Summary      List all courses
// @Tags         courses
// @Produce      json
// @Success      200  {array}  domain.Course
// @Router       /courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.courseService.ListCourses(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, courses)
}

// Create adds a course to the catalog.
//
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCourseRequest  true  "Course details"
// @Success      201   {object}  domain.Course
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	course, err := h.courseService.CreateCourse(c.Request().Context(), role, ports.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Videos:      req.Videos,
	})
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, course)
}

// Update applies a partial patch to a course.
//
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Course id"
// @Param        body  body      updateCourseRequest  true  "Fields to update"
// @Success      200   {object}  domain.Course
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	course, err := h.courseService.UpdateCourse(c.Request().Context(), role, c.Param("id"), ports.UpdateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Videos:      req.Videos,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})
		case errors.Is(err, domain.ErrCourseNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, course)
}

// Delete removes a course from the catalog.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Router       /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.courseService.DeleteCourse(c.Request().Context(), role, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Course deleted"})
}

// Buy enrolls the caller in a course. Repeat purchases are a no-op.
//
// @Summary      Buy a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /courses/buy/{id} [post]
func (h *CourseHandler) Buy(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.courseService.BuyCourse(c.Request().Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrCourseNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Enrolled in course"})
}

// My returns the caller's purchased courses expanded to full records.
//
// @Summary      List my purchased courses
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Course
// @Failure      401  {object}  errorResponse
// @Router       /courses/my [get]
func (h *CourseHandler) My(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	courses, err := h.courseService.ListMyCourses(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, courses)
}

// Lessons returns the paid content of a purchased course. This is the
// ownership gate: browsing the catalog is free, lesson access is not.
//
// @Summary      Get lessons of a purchased course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  courseLessonsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /courses/lessons/{id} [get]
func (h *CourseHandler) Lessons(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	lessons, err := h.courseService.CourseLessons(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotEnrolled):
			return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrCourseNotFound), errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, courseLessonsResponse{Title: lessons.Title, Videos: lessons.Videos})
}
