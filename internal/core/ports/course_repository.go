package ports

import (
	"context"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

// CoursePatch carries the optional fields of a partial course update.
// Nil fields are left untouched.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *float64
	Videos      *[]string
}

// CourseRepository defines persistence operations for the course catalog.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (*domain.Course, error)
	Update(ctx context.Context, id string, patch CoursePatch) (*domain.Course, error)
	// Delete removes a course unconditionally; deleting a missing id is not
	// an error and existing enrollments are left untouched.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	// FindByIDs returns the courses matching ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
}
