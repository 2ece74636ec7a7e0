// Package mongo implements persistence.Store on MongoDB through the official
// v2 driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/example/placement-portal/internal/persistence"
)

const (
	usersCollection        = "users"
	jobsCollection         = "jobs"
	applicationsCollection = "applications"
	messagesCollection     = "messages"

	defaultDatabase = "placement_portal"
	closeTimeout    = 5 * time.Second
)

// Config describes how to reach the database.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Storage is a MongoDB backed persistence.Store.
type Storage struct {
	client       *mongo.Client
	users        *mongo.Collection
	jobs         *mongo.Collection
	applications *mongo.Collection
	messages     *mongo.Collection
	logger       *slog.Logger
}

var _ persistence.Store = (*Storage)(nil)

// Connect creates a client for config and verifies the server is reachable.
func Connect(ctx context.Context, config Config, logger *slog.Logger) (*Storage, error) {
	if strings.TrimSpace(config.URI) == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := options.Client().ApplyURI(config.URI)
	if config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(config.ConnectTimeout).SetServerSelectionTimeout(config.ConnectTimeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", mapError(err))
	}

	storage := newStorage(client, config.Database, logger)
	if err := storage.Ping(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}
	return storage, nil
}

func newStorage(client *mongo.Client, database string, logger *slog.Logger) *Storage {
	db := client.Database(database)
	return &Storage{
		client:       client,
		users:        db.Collection(usersCollection),
		jobs:         db.Collection(jobsCollection),
		applications: db.Collection(applicationsCollection),
		messages:     db.Collection(messagesCollection),
		logger:       logger,
	}
}

// Migrate creates the indexes the repositories rely on. Existing indexes
// are left untouched.
func (s *Storage) Migrate(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email")}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("users_role")}},
		{s.jobs, mongo.IndexModel{Keys: bson.D{{Key: "posted_by", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("jobs_posted_by")}},
		{s.applications, mongo.IndexModel{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "job_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("applications_student_job")}},
		{s.applications, mongo.IndexModel{Keys: bson.D{{Key: "job_id", Value: 1}}, Options: options.Index().SetName("applications_job")}},
		{s.applications, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("applications_status")}},
		{s.messages, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("messages_created_at")}},
	}

	for _, idx := range indexes {
		name, err := idx.coll.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("mongo: create index on %s: %w", idx.coll.Name(), mapError(err))
		}
		s.logger.DebugContext(ctx, "index ensured", "collection", idx.coll.Name(), "index", name)
	}
	s.logger.InfoContext(ctx, "mongo indexes ensured", "count", len(indexes))
	return nil
}

// Ping checks the primary is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return persistence.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return err
}
