package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/course-marketplace/internal/auth"
	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

func newAuthService(users ports.UserRepository, courses ports.CourseRepository) (*AuthService, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	return NewAuthService(users, courses, issuer, zerolog.Nop()), issuer
}

func registerStudent(t *testing.T, svc *AuthService, name, email string) {
	t.Helper()
	err := svc.Register(context.Background(), ports.RegisterInput{
		Name: name, Email: email, Password: "pass123", Role: domain.RoleStudent,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func TestAuthService_Register_Student(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "alice", Email: "alice@example.com", Password: "pass123",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	stored, err := users.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Role != domain.RoleStudent {
		t.Fatalf("expected default role student, got %s", stored.Role)
	}
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_AdminSingleton(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "root", Email: "root@example.com", Password: "pass123", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("first admin registration failed: %v", err)
	}

	err = svc.Register(context.Background(), ports.RegisterInput{
		Name: "root2", Email: "root2@example.com", Password: "pass123", Role: domain.RoleAdmin,
	})
	if err != domain.ErrAdminExists {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}

	if _, err := users.FindByEmail(context.Background(), "root2@example.com"); err != domain.ErrUserNotFound {
		t.Fatalf("second admin must not persist, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(newStubUserRepo(), newStubCourseRepo())

	registerStudent(t, svc, "bob", "bob@example.com")
	err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "other", Email: "bob@example.com", Password: "pass456",
	})
	if err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	err := svc.Register(context.Background(), ports.RegisterInput{Name: "noemail", Password: "pass123"})
	if err != domain.ErrMissingFields {
		t.Fatalf("expected ErrMissingFields without email, got %v", err)
	}

	err = svc.Register(context.Background(), ports.RegisterInput{Name: "nopass", Email: "nopass@example.com"})
	if err != domain.ErrMissingFields {
		t.Fatalf("expected ErrMissingFields without password, got %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc, _ := newAuthService(newStubUserRepo(), newStubCourseRepo())

	err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "eve", Email: "eve@example.com", Password: "pass123", Role: "superuser",
	})
	if err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, issuer := newAuthService(newStubUserRepo(), newStubCourseRepo())
	registerStudent(t, svc, "carol", "carol@example.com")

	result, err := svc.Login(context.Background(), "carol@example.com", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.Message != "Student logged successfully" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if result.User.Name != "carol" || result.User.Role != domain.RoleStudent {
		t.Fatalf("unexpected user summary: %+v", result.User)
	}

	claims, err := issuer.Verify(result.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("token subject %s does not match user %s", claims.UserID, result.User.ID)
	}
	if claims.Role != domain.RoleStudent {
		t.Fatalf("expected role student in claims, got %s", claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := newAuthService(newStubUserRepo(), newStubCourseRepo())
	registerStudent(t, svc, "dave", "dave@example.com")

	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _ := newAuthService(newStubUserRepo(), newStubCourseRepo())

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_AdminStats(t *testing.T) {
	users := newStubUserRepo()
	courses := newStubCourseRepo()
	svc, _ := newAuthService(users, courses)

	ctx := context.Background()
	courseA, _ := courses.Create(ctx, &domain.Course{Title: "A", Price: 10.00})
	courseB, _ := courses.Create(ctx, &domain.Course{Title: "B", Price: 20.00})

	registerStudent(t, svc, "s1", "s1@example.com")
	registerStudent(t, svc, "s2", "s2@example.com")
	registerStudent(t, svc, "s3", "s3@example.com")

	s1, _ := users.FindByEmail(ctx, "s1@example.com")
	s2, _ := users.FindByEmail(ctx, "s2@example.com")
	s3, _ := users.FindByEmail(ctx, "s3@example.com")

	// Two students own only A; one owns both A and B.
	_, _ = users.AddPurchasedCourse(ctx, s1.ID, courseA.ID)
	_, _ = users.AddPurchasedCourse(ctx, s2.ID, courseA.ID)
	_, _ = users.AddPurchasedCourse(ctx, s3.ID, courseA.ID)
	_, _ = users.AddPurchasedCourse(ctx, s3.ID, courseB.ID)

	stats, err := svc.AdminStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalStudents != 3 {
		t.Fatalf("expected 3 students, got %d", stats.TotalStudents)
	}
	// 3×10.00 for A + 1×20.00 for B.
	if stats.TotalRevenue != "50.00" {
		t.Fatalf("expected revenue 50.00, got %s", stats.TotalRevenue)
	}
	if stats.TotalEnrollments != 4 {
		t.Fatalf("expected 4 enrollments, got %d", stats.TotalEnrollments)
	}
}

func TestAuthService_DeleteStudent_NeverMatchesAdmin(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	if err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "root", Email: "root@example.com", Password: "pass123", Role: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	admin, _ := users.FindAdmin(context.Background())

	if err := svc.DeleteStudent(context.Background(), admin.ID); err != domain.ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound for admin id, got %v", err)
	}
	if _, err := users.FindAdmin(context.Background()); err != nil {
		t.Fatalf("admin must survive delete attempt: %v", err)
	}

	registerStudent(t, svc, "s1", "s1@example.com")
	s1, _ := users.FindByEmail(context.Background(), "s1@example.com")
	if err := svc.DeleteStudent(context.Background(), s1.ID); err != nil {
		t.Fatalf("delete student: %v", err)
	}
}

func TestAuthService_UpdateStudent_ResetPassword(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	registerStudent(t, svc, "s1", "s1@example.com")
	s1, _ := users.FindByEmail(context.Background(), "s1@example.com")

	result, err := svc.UpdateStudent(context.Background(), s1.ID, ports.UpdateStudentInput{ResetPassword: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Message != "Student updated and password reset to: temp123456" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	updated, _ := users.FindByID(context.Background(), s1.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("temp123456")); err != nil {
		t.Fatalf("hash does not verify against temporary password: %v", err)
	}
}

func TestAuthService_UpdateStudent_PartialFields(t *testing.T) {
	users := newStubUserRepo()
	svc, _ := newAuthService(users, newStubCourseRepo())

	registerStudent(t, svc, "s1", "s1@example.com")
	s1, _ := users.FindByEmail(context.Background(), "s1@example.com")
	oldHash := s1.PasswordHash

	name := "renamed"
	result, err := svc.UpdateStudent(context.Background(), s1.ID, ports.UpdateStudentInput{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Student.Name != "renamed" {
		t.Fatalf("name not applied: %+v", result.Student)
	}
	if result.Message != "Student updated successfully" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	updated, _ := users.FindByID(context.Background(), s1.ID)
	if updated.Email != "s1@example.com" {
		t.Fatalf("email must be untouched, got %s", updated.Email)
	}
	if updated.PasswordHash != oldHash {
		t.Fatalf("password must be untouched without reset")
	}
}

func TestAuthService_ListStudents_SortedAndExpanded(t *testing.T) {
	users := newStubUserRepo()
	courses := newStubCourseRepo()
	svc, _ := newAuthService(users, courses)

	ctx := context.Background()
	course, _ := courses.Create(ctx, &domain.Course{Title: "Go Basics", Price: 49.90})

	registerStudent(t, svc, "zoe", "zoe@example.com")
	registerStudent(t, svc, "amy", "amy@example.com")

	zoe, _ := users.FindByEmail(ctx, "zoe@example.com")
	_, _ = users.AddPurchasedCourse(ctx, zoe.ID, course.ID)
	// A dangling id from a deleted course must be skipped in the expansion.
	_, _ = users.AddPurchasedCourse(ctx, zoe.ID, "gone")

	views, err := svc.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 students, got %d", len(views))
	}
	if views[0].Name != "amy" || views[1].Name != "zoe" {
		t.Fatalf("expected name-ascending order, got %s, %s", views[0].Name, views[1].Name)
	}
	if len(views[1].PurchasedCourses) != 1 {
		t.Fatalf("expected 1 expanded course, got %d", len(views[1].PurchasedCourses))
	}
	enrolled := views[1].PurchasedCourses[0]
	if enrolled.Title != "Go Basics" || enrolled.Price != 49.90 {
		t.Fatalf("unexpected expansion: %+v", enrolled)
	}
}
