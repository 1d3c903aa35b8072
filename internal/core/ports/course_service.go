package ports

import (
	"context"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

// CreateCourseInput carries the data for a new catalog entry.
type CreateCourseInput struct {
	Title       string
	Description string
	Price       float64
	Videos      []string
}

// UpdateCourseInput carries the optional fields of a partial course update.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Price       *float64
	Videos      *[]string
}

// CourseLessons is the paid content view of a purchased course.
type CourseLessons struct {
	Title  string   `json:"title"`
	Videos []string `json:"videos"`
}

// CourseService implements the catalog, enrollment, and lesson-access
// use cases. Write operations double-check the caller's role even though the
// routes are already admin-gated.
type CourseService interface {
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	CreateCourse(ctx context.Context, role domain.Role, in CreateCourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, role domain.Role, id string, in UpdateCourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, role domain.Role, id string) error
	BuyCourse(ctx context.Context, userID, courseID string) error
	ListMyCourses(ctx context.Context, userID string) ([]*domain.Course, error)
	CourseLessons(ctx context.Context, userID, courseID string) (*CourseLessons, error)
}
