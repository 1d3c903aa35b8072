package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

// In-memory repository stubs shared by the service tests. They mirror the
// store-level invariants: unique emails, the admin partial index, and the
// add-to-set purchase semantics.

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PurchasedCourses = append([]string(nil), u.PurchasedCourses...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if user.Role == domain.RoleAdmin && u.Role == domain.RoleAdmin {
			return nil, domain.ErrAdminExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user_%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAdmin(_ context.Context) (*domain.User, error) {
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ListStudents(_ context.Context) ([]*domain.User, error) {
	var students []*domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleStudent {
			students = append(students, cloneUser(u))
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (r *stubUserRepo) UpdateStudent(_ context.Context, id string, patch ports.StudentPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || u.Role != domain.RoleStudent {
		return nil, domain.ErrStudentNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) DeleteStudent(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok || u.Role != domain.RoleStudent {
		return domain.ErrStudentNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) AddPurchasedCourse(_ context.Context, userID, courseID string) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if u.Owns(courseID) {
		return false, nil
	}
	u.PurchasedCourses = append(u.PurchasedCourses, courseID)
	return true, nil
}

func (r *stubUserRepo) CountStudents(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleStudent {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) CountEnrolled(_ context.Context, courseID string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Owns(courseID) {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) SumEnrollments(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleStudent {
			n += int64(len(u.PurchasedCourses))
		}
	}
	return n, nil
}

type stubCourseRepo struct {
	courses map[string]*domain.Course
	seq     int
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[string]*domain.Course)}
}

func cloneCourse(c *domain.Course) *domain.Course {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Videos = append([]string(nil), c.Videos...)
	return &clone
}

func (r *stubCourseRepo) Create(_ context.Context, course *domain.Course) (*domain.Course, error) {
	r.seq++
	clone := cloneCourse(course)
	clone.ID = fmt.Sprintf("course_%d", r.seq)
	r.courses[clone.ID] = clone
	return cloneCourse(clone), nil
}

func (r *stubCourseRepo) Update(_ context.Context, id string, patch ports.CoursePatch) (*domain.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.Videos != nil {
		c.Videos = append([]string(nil), *patch.Videos...)
	}
	return cloneCourse(c), nil
}

func (r *stubCourseRepo) Delete(_ context.Context, id string) error {
	delete(r.courses, id)
	return nil
}

func (r *stubCourseRepo) FindByID(_ context.Context, id string) (*domain.Course, error) {
	if c, ok := r.courses[id]; ok {
		return cloneCourse(c), nil
	}
	return nil, domain.ErrCourseNotFound
}

func (r *stubCourseRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Course, error) {
	found := make([]*domain.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.courses[id]; ok {
			found = append(found, cloneCourse(c))
		}
	}
	return found, nil
}

func (r *stubCourseRepo) List(_ context.Context) ([]*domain.Course, error) {
	all := make([]*domain.Course, 0, len(r.courses))
	for _, c := range r.courses {
		all = append(all, cloneCourse(c))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// fakeCatalogCache records cache traffic for assertions.
type fakeCatalogCache struct {
	courses       []*domain.Course
	sets          int
	invalidations int
}

func (f *fakeCatalogCache) Get(_ context.Context) ([]*domain.Course, error) {
	return f.courses, nil
}

func (f *fakeCatalogCache) Set(_ context.Context, courses []*domain.Course) error {
	f.courses = courses
	f.sets++
	return nil
}

func (f *fakeCatalogCache) Invalidate(_ context.Context) error {
	f.courses = nil
	f.invalidations++
	return nil
}
