package domain

import (
	"errors"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// LoginMessage returns the role-specific greeting included in the login response.
func (r Role) LoginMessage() string {
	switch r {
	case RoleAdmin:
		return "Admin logged successfully"
	case RoleStudent:
		return "Student logged successfully"
	default:
		return ""
	}
}

var ErrUserNotFound = errors.New("user not found")
var ErrStudentNotFound = errors.New("student not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrAdminExists = errors.New("an admin is already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrMissingFields = errors.New("email and password are required")
var ErrForbidden = errors.New("access forbidden")

// User models an account. At most one user with RoleAdmin may exist at any
// time; the registration flow enforces it and a unique partial index in the
// store backstops it.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	// PurchasedCourses holds the ids of courses the user is enrolled in,
	// in purchase order. Membership gates lesson access.
	PurchasedCourses []string  `json:"purchased_courses"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Owns reports whether the user has purchased the given course.
func (u *User) Owns(courseID string) bool {
	for _, id := range u.PurchasedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
