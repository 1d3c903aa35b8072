package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

type stubCourseService struct {
	catalog []*domain.Course
	created *domain.Course
	updated *domain.Course
	lessons *ports.CourseLessons
	mine    []*domain.Course
	err     error

	boughtUser   string
	boughtCourse string
}

func (s *stubCourseService) ListCourses(context.Context) ([]*domain.Course, error) {
	return s.catalog, s.err
}

func (s *stubCourseService) CreateCourse(_ context.Context, role domain.Role, _ ports.CreateCourseInput) (*domain.Course, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.created, s.err
}

func (s *stubCourseService) UpdateCourse(_ context.Context, role domain.Role, _ string, _ ports.UpdateCourseInput) (*domain.Course, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.updated, s.err
}

func (s *stubCourseService) DeleteCourse(_ context.Context, role domain.Role, _ string) error {
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.err
}

func (s *stubCourseService) BuyCourse(_ context.Context, userID, courseID string) error {
	s.boughtUser = userID
	s.boughtCourse = courseID
	return s.err
}

func (s *stubCourseService) ListMyCourses(context.Context, string) ([]*domain.Course, error) {
	return s.mine, s.err
}

func (s *stubCourseService) CourseLessons(context.Context, string, string) (*ports.CourseLessons, error) {
	return s.lessons, s.err
}

// newAuthedContext builds a request context with the claims the Auth
// middleware would have injected.
func newAuthedContext(method, target, body, userID string, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	if role != "" {
		c.Set("role", role)
	}
	return c, rec
}

func TestCourseHandler_List(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{
		catalog: []*domain.Course{{ID: "course_1", Title: "Go", Price: 25}},
	})

	c, rec := newAuthedContext(http.MethodGet, "/courses", "", "", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body []domain.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].Title != "Go" {
		t.Fatalf("unexpected catalog: %+v", body)
	}
}

func TestCourseHandler_Create_Admin(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{
		created: &domain.Course{ID: "course_1", Title: "Go", Price: 25},
	})

	c, rec := newAuthedContext(http.MethodPost, "/courses",
		`{"title":"Go","price":25}`, "user_1", domain.RoleAdmin)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCourseHandler_Create_StudentForbidden(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{})

	c, rec := newAuthedContext(http.MethodPost, "/courses",
		`{"title":"Go","price":25}`, "user_1", domain.RoleStudent)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if decodeError(t, rec).Error != "access denied" {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestCourseHandler_Create_NegativePrice(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{})

	c, rec := newAuthedContext(http.MethodPost, "/courses",
		`{"title":"Go","price":-1}`, "user_1", domain.RoleAdmin)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCourseHandler_Update_NotFound(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{err: domain.ErrCourseNotFound})

	c, rec := newAuthedContext(http.MethodPut, "/courses/missing",
		`{"price":30}`, "user_1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCourseHandler_Delete(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{})

	c, rec := newAuthedContext(http.MethodDelete, "/courses/course_1", "", "user_1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("course_1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Course deleted" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestCourseHandler_Buy(t *testing.T) {
	svc := &stubCourseService{}
	h := NewCourseHandler(svc)

	c, rec := newAuthedContext(http.MethodPost, "/courses/buy/course_1", "", "user_1", domain.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues("course_1")
	if err := h.Buy(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.boughtUser != "user_1" || svc.boughtCourse != "course_1" {
		t.Fatalf("unexpected purchase args: %s %s", svc.boughtUser, svc.boughtCourse)
	}
}

func TestCourseHandler_Buy_MissingClaims(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{})

	c, _ := newAuthedContext(http.MethodPost, "/courses/buy/course_1", "", "", "")
	c.SetParamNames("id")
	c.SetParamValues("course_1")

	err := h.Buy(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", httpErr.Code)
	}
}

func TestCourseHandler_My(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{
		mine: []*domain.Course{{ID: "course_1", Title: "Go"}},
	})

	c, rec := newAuthedContext(http.MethodGet, "/courses/my", "", "user_1", domain.RoleStudent)
	if err := h.My(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCourseHandler_Lessons(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{
		lessons: &ports.CourseLessons{Title: "Go", Videos: []string{"intro.mp4"}},
	})

	c, rec := newAuthedContext(http.MethodGet, "/courses/lessons/course_1", "", "user_1", domain.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues("course_1")
	if err := h.Lessons(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body courseLessonsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Title != "Go" || len(body.Videos) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCourseHandler_Lessons_NotEnrolled(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{err: domain.ErrNotEnrolled})

	c, rec := newAuthedContext(http.MethodGet, "/courses/lessons/course_1", "", "user_1", domain.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues("course_1")
	if err := h.Lessons(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
