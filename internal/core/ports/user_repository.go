package ports

import (
	"context"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

// StudentPatch carries the optional fields of an admin-driven student update.
// Nil fields are left untouched.
type StudentPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserRepository defines persistence operations on user accounts.
//
// Student-scoped operations (UpdateStudent, DeleteStudent) never match an
// admin account: an admin id behaves as if it did not exist.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindAdmin returns the admin account, or ErrUserNotFound when none exists.
	FindAdmin(ctx context.Context) (*domain.User, error)

	// ListStudents returns all student accounts sorted by name ascending.
	ListStudents(ctx context.Context) ([]*domain.User, error)
	UpdateStudent(ctx context.Context, id string, patch StudentPatch) (*domain.User, error)
	DeleteStudent(ctx context.Context, id string) error

	// AddPurchasedCourse atomically adds courseID to the user's purchased set
	// and reports whether the set actually grew (false on repeat purchase).
	AddPurchasedCourse(ctx context.Context, userID, courseID string) (bool, error)

	CountStudents(ctx context.Context) (int64, error)
	// CountEnrolled counts students whose purchased set contains courseID.
	CountEnrolled(ctx context.Context, courseID string) (int64, error)
	// SumEnrollments sums the purchased-set sizes over all students.
	SumEnrollments(ctx context.Context) (int64, error)
}
