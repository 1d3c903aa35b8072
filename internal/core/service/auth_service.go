package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/course-marketplace/internal/api/metrics"
	"github.com/learnhub/course-marketplace/internal/auth"
	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

// tempPassword is the fixed credential applied on an admin-driven password
// reset. It is reported back to the admin in the response message. A known
// weak point: a randomly generated one-time credential would be the hardened
// variant, but password hardening is out of scope here.
const tempPassword = "temp123456"

// AuthService implements registration, login, and the admin roster.
type AuthService struct {
	users   ports.UserRepository
	courses ports.CourseRepository
	tokens  *auth.TokenIssuer
	logger  zerolog.Logger
}

func NewAuthService(users ports.UserRepository, courses ports.CourseRepository, tokens *auth.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, courses: courses, tokens: tokens, logger: logger}
}

// Register creates a new account. Registering an admin fails when one already
// exists; the lookup runs before any write, and the store's unique partial
// index on the admin role closes the remaining race window.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	if in.Email == "" || in.Password == "" {
		return domain.ErrMissingFields
	}

	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	if role == domain.RoleAdmin {
		_, err := s.users.FindAdmin(ctx)
		if err == nil {
			return domain.ErrAdminExists
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.users.Create(ctx, &domain.User{
		Name:             in.Name,
		Email:            in.Email,
		PasswordHash:     string(hash),
		Role:             role,
		PurchasedCourses: []string{},
	}); err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	s.logger.Info().Str("email", in.Email).Str("role", string(role)).Msg("user registered")
	return nil
}

// Login verifies the credentials and issues a session token embedding the
// user's id and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{
		Token:   token,
		Message: user.Role.LoginMessage(),
		User:    ports.UserSummary{ID: user.ID, Name: user.Name, Role: user.Role},
	}, nil
}

// AdminStats recomputes the marketplace totals from the raw records: revenue
// is the membership-count join Σ(price × enrolled students) over all courses.
func (s *AuthService) AdminStats(ctx context.Context) (*ports.AdminStats, error) {
	totalStudents, err := s.users.CountStudents(ctx)
	if err != nil {
		return nil, err
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	var revenue float64
	for _, course := range courses {
		enrolled, err := s.users.CountEnrolled(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		revenue += course.Price * float64(enrolled)
	}

	totalEnrollments, err := s.users.SumEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.AdminStats{
		TotalStudents:    totalStudents,
		TotalRevenue:     fmt.Sprintf("%.2f", revenue),
		TotalEnrollments: totalEnrollments,
	}, nil
}

// ListStudents returns all students sorted by name, with their purchased
// course ids expanded to (title, price) summaries. Ids pointing at deleted
// courses are dropped from the expansion.
func (s *AuthService) ListStudents(ctx context.Context) ([]ports.StudentView, error) {
	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogByID(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ports.StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, s.studentView(student, catalog))
	}
	return views, nil
}

// DeleteStudent removes a student account. An admin id is never matched, even
// when it exists.
func (s *AuthService) DeleteStudent(ctx context.Context, id string) error {
	if err := s.users.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("student_id", id).Msg("student deleted")
	return nil
}

// UpdateStudent applies a partial update to a student account, scoped the
// same way as DeleteStudent. A password reset overwrites the stored hash with
// the hash of tempPassword and names that value in the result message.
func (s *AuthService) UpdateStudent(ctx context.Context, id string, in ports.UpdateStudentInput) (*ports.UpdateStudentResult, error) {
	patch := ports.StudentPatch{Name: in.Name, Email: in.Email}
	if in.ResetPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		patch.PasswordHash = &h
	}

	updated, err := s.users.UpdateStudent(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogByID(ctx)
	if err != nil {
		return nil, err
	}

	message := "Student updated successfully"
	if in.ResetPassword {
		message = "Student updated and password reset to: " + tempPassword
	}
	s.logger.Info().Str("student_id", id).Bool("password_reset", in.ResetPassword).Msg("student updated")

	return &ports.UpdateStudentResult{
		Student: s.studentView(updated, catalog),
		Message: message,
	}, nil
}

// catalogByID loads the full catalog once and indexes it by course id.
func (s *AuthService) catalogByID(ctx context.Context) (map[string]*domain.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*domain.Course, len(courses))
	for _, c := range courses {
		catalog[c.ID] = c
	}
	return catalog, nil
}

func (s *AuthService) studentView(u *domain.User, catalog map[string]*domain.Course) ports.StudentView {
	enrolled := make([]ports.EnrolledCourse, 0, len(u.PurchasedCourses))
	for _, id := range u.PurchasedCourses {
		course, ok := catalog[id]
		if !ok {
			continue
		}
		enrolled = append(enrolled, ports.EnrolledCourse{ID: course.ID, Title: course.Title, Price: course.Price})
	}
	return ports.StudentView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		PurchasedCourses: enrolled,
	}
}
