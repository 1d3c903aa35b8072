package ports

import (
	"context"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

// RegisterInput carries the data for a new account. An empty Role defaults
// to student.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserSummary is the public view of an account (no email, no password hash).
type UserSummary struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string
	Message string
	User    UserSummary
}

// AdminStats aggregates marketplace totals, recomputed fresh on every call.
type AdminStats struct {
	TotalStudents int64
	// TotalRevenue is Σ over courses of price × enrolled-student count,
	// formatted with two decimal places.
	TotalRevenue     string
	TotalEnrollments int64
}

// EnrolledCourse is a purchased course expanded to its public summary.
type EnrolledCourse struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// StudentView is the admin-facing view of a student account.
type StudentView struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Role             domain.Role      `json:"role"`
	PurchasedCourses []EnrolledCourse `json:"purchased_courses"`
}

// UpdateStudentInput carries the optional fields of a student update.
type UpdateStudentInput struct {
	Name          *string
	Email         *string
	ResetPassword bool
}

// UpdateStudentResult pairs the updated record with a human-readable message
// (which names the temporary password when one was set).
type UpdateStudentResult struct {
	Student StudentView
	Message string
}

// AuthService implements registration, login, and the admin-facing roster.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
	ListStudents(ctx context.Context) ([]StudentView, error)
	DeleteStudent(ctx context.Context, id string) error
	UpdateStudent(ctx context.Context, id string, in UpdateStudentInput) (*UpdateStudentResult, error)
}
