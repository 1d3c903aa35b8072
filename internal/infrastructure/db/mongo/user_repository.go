package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/ports"
)

const usersCollection = "users"

// Index names referenced when disambiguating duplicate-key errors.
const (
	indexEmailUnique    = "email_unique"
	indexAdminSingleton = "role_admin_singleton"
)

// UserRepository implements ports.UserRepository on MongoDB. Two unique
// indexes back the data-model invariants: email uniqueness across all users,
// and a partial index on role restricted to "admin" documents that makes the
// admin singleton hold even under concurrent registrations.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Name             string               `bson:"name"`
	Email            string               `bson:"email"`
	PasswordHash     string               `bson:"password_hash"`
	Role             string               `bson:"role"`
	PurchasedCourses []primitive.ObjectID `bson:"purchased_courses"`
	CreatedAt        int64                `bson:"created_at"`
	UpdatedAt        int64                `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Unix()
	doc := mongoUser{
		Name:             user.Name,
		Email:            user.Email,
		PasswordHash:     user.PasswordHash,
		Role:             string(user.Role),
		PurchasedCourses: []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), indexAdminSingleton) {
				return nil, domain.ErrAdminExists
			}
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.CreatedAt = time.Unix(now, 0).UTC()
	created.UpdatedAt = created.CreatedAt
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, domain.ErrUserNotFound)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, domain.ErrUserNotFound)
}

func (r *UserRepository) FindAdmin(ctx context.Context) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"role": string(domain.RoleAdmin)}, domain.ErrUserNotFound)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, notFound error) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(&mu), nil
}

// ListStudents returns all student accounts sorted by name ascending.
func (r *UserRepository) ListStudents(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"role": string(domain.RoleStudent)}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}

	students := make([]*domain.User, 0, len(docs))
	for i := range docs {
		students = append(students, toDomainUser(&docs[i]))
	}
	return students, nil
}

// UpdateStudent applies a partial update scoped to role=student; an admin id
// behaves as if it did not exist.
func (r *UserRepository) UpdateStudent(ctx context.Context, id string, patch ports.StudentPatch) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStudentNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "role": string(domain.RoleStudent)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	return toDomainUser(&mu), nil
}

// DeleteStudent removes a student account, scoped the same way as UpdateStudent.
func (r *UserRepository) DeleteStudent(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrStudentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "role": string(domain.RoleStudent)})
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// AddPurchasedCourse appends courseID to the user's purchased set with a
// single $addToSet, so repeat and concurrent purchases cannot duplicate the
// entry or lose updates. The course id is not checked for existence. Whether
// the set actually grew is derived from the pre-update document, not from
// ModifiedCount: the updated_at rider modifies the document even when the
// $addToSet is a no-op.
func (r *UserRepository) AddPurchasedCourse(ctx context.Context, userID, courseID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}
	cid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return false, domain.ErrCourseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$addToSet": bson.M{"purchased_courses": cid},
		"$set":      bson.M{"updated_at": time.Now().UTC().Unix()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": uid}, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("add purchased course: %w", err)
	}
	return purchaseGrewSet(&before, cid), nil
}

// purchaseGrewSet reports whether adding cid to the user's purchased set was
// a real addition, given the document as it looked before the update.
func purchaseGrewSet(before *mongoUser, cid primitive.ObjectID) bool {
	for _, owned := range before.PurchasedCourses {
		if owned == cid {
			return false
		}
	}
	return true
}

func (r *UserRepository) CountStudents(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(domain.RoleStudent)})
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

// CountEnrolled counts students whose purchased set contains courseID.
func (r *UserRepository) CountEnrolled(ctx context.Context, courseID string) (int64, error) {
	cid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return 0, domain.ErrCourseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"purchased_courses": cid})
	if err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return n, nil
}

// SumEnrollments sums the purchased-set sizes over all students via a single
// aggregation.
func (r *UserRepository) SumEnrollments(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": string(domain.RoleStudent)}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": "$purchased_courses"}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$count"}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode enrollments: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// EnsureIndexes creates the unique email index and the partial unique index
// enforcing the admin singleton at the store level.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexEmailUnique).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
			Options: options.Index().
				SetName(indexAdminSingleton).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": string(domain.RoleAdmin)}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func toDomainUser(mu *mongoUser) *domain.User {
	purchased := make([]string, 0, len(mu.PurchasedCourses))
	for _, oid := range mu.PurchasedCourses {
		purchased = append(purchased, oid.Hex())
	}
	return &domain.User{
		ID:               mu.ID.Hex(),
		Name:             mu.Name,
		Email:            mu.Email,
		PasswordHash:     mu.PasswordHash,
		Role:             domain.Role(mu.Role),
		PurchasedCourses: purchased,
		CreatedAt:        unixToTime(mu.CreatedAt),
		UpdatedAt:        unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
