package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/example/placement-portal/internal/persistence"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

// --- UserRepository implementation ---

// CreateUser inserts a user. The unique email index reports duplicates.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}
	user.Email = normalizeEmail(user.Email)
	_, err := s.users.InsertOne(ctx, newUserDocument(user))
	return mapError(err)
}

// UpdateUser replaces an existing user.
func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	user.Email = normalizeEmail(user.Email)
	return s.replace(ctx, s.users, user.ID, newUserDocument(user))
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return persistence.User{}, mapError(err)
	}
	return doc.record(), nil
}

// GetUserByEmail retrieves a user by normalized email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc); err != nil {
		return persistence.User{}, mapError(err)
	}
	return doc.record(), nil
}

// ListUsersByID returns the users whose IDs are listed. Unknown IDs are skipped.
func (s *Storage) ListUsersByID(ctx context.Context, ids []string) ([]persistence.User, error) {
	if len(ids) == 0 {
		return []persistence.User{}, nil
	}
	var docs []userDocument
	if err := s.findAll(ctx, s.users, bson.M{"_id": bson.M{"$in": ids}}, bson.D{{Key: "_id", Value: 1}}, &docs); err != nil {
		return nil, err
	}
	users := make([]persistence.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.record())
	}
	return users, nil
}

// CountUsers counts users with role, or every user when role is empty.
func (s *Storage) CountUsers(ctx context.Context, role string) (int, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return s.count(ctx, s.users, filter)
}

// --- JobRepository implementation ---

// CreateJob inserts a job.
func (s *Storage) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.jobs.InsertOne(ctx, newJobDocument(job))
	return mapError(err)
}

// GetJob retrieves a job by ID.
func (s *Storage) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	var doc jobDocument
	if err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return persistence.Job{}, mapError(err)
	}
	return doc.record(), nil
}

// ListJobs returns jobs matching filter, newest first.
func (s *Storage) ListJobs(ctx context.Context, filter persistence.JobFilter) ([]persistence.Job, error) {
	query := bson.M{}
	if filter.PostedBy != "" {
		query["posted_by"] = filter.PostedBy
	}
	var docs []jobDocument
	if err := s.findAll(ctx, s.jobs, query, newestFirst, &docs); err != nil {
		return nil, err
	}
	jobs := make([]persistence.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, doc.record())
	}
	return jobs, nil
}

// CountJobs returns the number of jobs.
func (s *Storage) CountJobs(ctx context.Context) (int, error) {
	return s.count(ctx, s.jobs, bson.M{})
}

// --- ApplicationRepository implementation ---

// CreateApplication inserts an application. The unique (student_id, job_id)
// index reports duplicates.
func (s *Storage) CreateApplication(ctx context.Context, app persistence.Application) error {
	if app.ID == "" || app.StudentID == "" || app.JobID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.applications.InsertOne(ctx, newApplicationDocument(app))
	return mapError(err)
}

// UpdateApplication replaces an existing application.
func (s *Storage) UpdateApplication(ctx context.Context, app persistence.Application) error {
	return s.replace(ctx, s.applications, app.ID, newApplicationDocument(app))
}

// GetApplication retrieves an application by ID.
func (s *Storage) GetApplication(ctx context.Context, id string) (persistence.Application, error) {
	var doc applicationDocument
	if err := s.applications.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return persistence.Application{}, mapError(err)
	}
	return doc.record(), nil
}

// FindApplication retrieves the application of a student to a job.
func (s *Storage) FindApplication(ctx context.Context, studentID, jobID string) (persistence.Application, error) {
	var doc applicationDocument
	if err := s.applications.FindOne(ctx, bson.M{"student_id": studentID, "job_id": jobID}).Decode(&doc); err != nil {
		return persistence.Application{}, mapError(err)
	}
	return doc.record(), nil
}

// ListApplications returns applications matching filter, newest first.
func (s *Storage) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	var docs []applicationDocument
	sort := bson.D{{Key: "applied_at", Value: -1}, {Key: "_id", Value: 1}}
	if err := s.findAll(ctx, s.applications, applicationQuery(filter), sort, &docs); err != nil {
		return nil, err
	}
	apps := make([]persistence.Application, 0, len(docs))
	for _, doc := range docs {
		apps = append(apps, doc.record())
	}
	return apps, nil
}

// CountApplications counts applications matching filter.
func (s *Storage) CountApplications(ctx context.Context, filter persistence.ApplicationFilter) (int, error) {
	return s.count(ctx, s.applications, applicationQuery(filter))
}

func applicationQuery(filter persistence.ApplicationFilter) bson.M {
	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if len(filter.JobIDs) > 0 {
		query["job_id"] = bson.M{"$in": filter.JobIDs}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// --- MessageRepository implementation ---

// CreateMessage inserts a message.
func (s *Storage) CreateMessage(ctx context.Context, msg persistence.Message) error {
	if msg.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.messages.InsertOne(ctx, messageDocument{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt.UTC(),
	})
	return mapError(err)
}

// ListMessages returns every message, newest first.
func (s *Storage) ListMessages(ctx context.Context) ([]persistence.Message, error) {
	var docs []messageDocument
	if err := s.findAll(ctx, s.messages, bson.M{}, newestFirst, &docs); err != nil {
		return nil, err
	}
	msgs := make([]persistence.Message, 0, len(docs))
	for _, doc := range docs {
		msgs = append(msgs, persistence.Message{
			ID:        doc.ID,
			Name:      doc.Name,
			Email:     doc.Email,
			Subject:   doc.Subject,
			Body:      doc.Body,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return msgs, nil
}

// --- helpers ---

func (s *Storage) replace(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Storage) findAll(ctx context.Context, coll *mongo.Collection, filter any, sort bson.D, out any) error {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return mapError(err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Storage) count(ctx context.Context, coll *mongo.Collection, filter any) (int, error) {
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapError(err)
	}
	return int(n), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
