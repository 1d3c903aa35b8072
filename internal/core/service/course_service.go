package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/learnhub/course-marketplace/internal/api/metrics"
	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

// CatalogCache abstracts the catalog read-through cache (Redis). A nil slice
// from Get means a miss. Cache failures are never surfaced to callers.
type CatalogCache interface {
	Get(ctx context.Context) ([]*domain.Course, error)
	Set(ctx context.Context, courses []*domain.Course) error
	Invalidate(ctx context.Context) error
}

// CourseService implements the catalog, enrollment, and lesson-access use cases.
type CourseService struct {
	courses ports.CourseRepository
	users   ports.UserRepository
	cache   CatalogCache
	logger  zerolog.Logger
}

func NewCourseService(courses ports.CourseRepository, users ports.UserRepository, cache CatalogCache, logger zerolog.Logger) *CourseService {
	return &CourseService{courses: courses, users: users, cache: cache, logger: logger}
}

// ListCourses returns the full public catalog, served from the cache when warm.
func (s *CourseService) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache read failed, falling back to store")
		} else if cached != nil {
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		} else {
			metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courses); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return courses, nil
}

// CreateCourse adds a catalog entry. The role check repeats the route gate's
// decision inside the service boundary.
func (s *CourseService) CreateCourse(ctx context.Context, role domain.Role, in ports.CreateCourseInput) (*domain.Course, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	created, err := s.courses.Create(ctx, &domain.Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Videos:      in.Videos,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	metrics.CourseWritesTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("course_id", created.ID).Str("title", created.Title).Msg("course created")
	return created, nil
}

// UpdateCourse applies a partial patch to a catalog entry.
func (s *CourseService) UpdateCourse(ctx context.Context, role domain.Role, id string, in ports.UpdateCourseInput) (*domain.Course, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	updated, err := s.courses.Update(ctx, id, ports.CoursePatch{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Videos:      in.Videos,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	metrics.CourseWritesTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("course_id", id).Msg("course updated")
	return updated, nil
}

// DeleteCourse removes a catalog entry unconditionally. Existing enrollments
// keep the dangling id; expansions skip it.
func (s *CourseService) DeleteCourse(ctx context.Context, role domain.Role, id string) error {
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)
	metrics.CourseWritesTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("course_id", id).Msg("course deleted")
	return nil
}

// BuyCourse grants the enrollment. The grant is an atomic add-to-set in the
// store, so a repeat purchase is a no-op and concurrent purchases by the same
// user cannot lose updates. There is no price check and no existence check on
// the course id.
func (s *CourseService) BuyCourse(ctx context.Context, userID, courseID string) error {
	added, err := s.users.AddPurchasedCourse(ctx, userID, courseID)
	if err != nil {
		return err
	}

	result := "repeat"
	if added {
		result = "new"
	}
	metrics.PurchasesTotal.WithLabelValues(result).Inc()
	s.logger.Info().Str("user_id", userID).Str("course_id", courseID).Bool("new", added).Msg("course purchased")
	return nil
}

// ListMyCourses expands the caller's purchased ids to full course records,
// preserving purchase order. Deleted courses are skipped.
func (s *CourseService) ListMyCourses(ctx context.Context, userID string) ([]*domain.Course, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	found, err := s.courses.FindByIDs(ctx, user.PurchasedCourses)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	ordered := make([]*domain.Course, 0, len(user.PurchasedCourses))
	for _, id := range user.PurchasedCourses {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// CourseLessons returns the paid content of a course the caller has
// purchased. This is the ownership gate separating catalog browsing from
// lesson access.
func (s *CourseService) CourseLessons(ctx context.Context, userID, courseID string) (*ports.CourseLessons, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Owns(courseID) {
		return nil, domain.ErrNotEnrolled
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &ports.CourseLessons{Title: course.Title, Videos: course.Videos}, nil
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
