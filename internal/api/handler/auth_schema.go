package handler

import "github.com/learnhub/course-marketplace/internal/core/ports"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for acknowledgment-only results.
type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin student"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string            `json:"token"`
	Message string            `json:"message"`
	User    ports.UserSummary `json:"user"`
}

type adminStatsResponse struct {
	TotalStudents    int64  `json:"totalStudents"`
	TotalRevenue     string `json:"totalRevenue"`
	TotalEnrollments int64  `json:"totalEnrollments"`
}

type updateStudentRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email" validate:"omitempty,email"`
	ResetPassword bool    `json:"resetPassword"`
}

type updateStudentResponse struct {
	Student ports.StudentView `json:"student"`
	Message string            `json:"message"`
}
