// Package mongodb stores contact submissions in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jsamuelsen/contact-form-service/internal/domain"
	"github.com/jsamuelsen/contact-form-service/internal/platform/config"
)

// checkerName is the component name reported by readiness checks.
const checkerName = "mongodb"

// ErrNotConnected is returned when the startup connection never produced a client.
var ErrNotConnected = errors.New("mongodb client not connected")

// collection is the subset of *mongo.Collection used by the repository.
type collection interface {
	InsertOne(
		ctx context.Context,
		document any,
		opts ...options.Lister[options.InsertOneOptions],
	) (*mongo.InsertOneResult, error)
}

// pinger is the subset of *mongo.Client used for readiness.
type pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// submissionDocument is the stored shape of a submission. Empty text fields
// are left out of the document entirely.
type submissionDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name,omitempty"`
	Email     string        `bson:"email,omitempty"`
	Subject   string        `bson:"subject,omitempty"`
	Message   string        `bson:"message,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func toDocument(s *domain.Submission) submissionDocument {
	return submissionDocument{
		ID:        bson.NewObjectID(),
		Name:      s.Name,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

// Connect opens a client and pings the primary within cfg.ConnectTimeout.
// On a failed ping the client is still returned so the driver keeps
// reconnecting in the background; callers log the error and carry on.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return client, fmt.Errorf("pinging mongodb: %w", err)
	}

	return client, nil
}

// Repository implements ports.SubmissionRepository and ports.HealthChecker.
type Repository struct {
	client       *mongo.Client
	coll         collection
	ping         pinger
	writeTimeout time.Duration
}

// NewRepository builds a repository over client. A nil client yields a
// repository whose writes and health checks fail with ErrNotConnected.
func NewRepository(client *mongo.Client, cfg *config.MongoConfig) *Repository {
	r := &Repository{
		client:       client,
		writeTimeout: cfg.WriteTimeout,
	}

	if client != nil {
		r.coll = client.Database(cfg.Database).Collection(cfg.Collection)
		r.ping = client
	}

	return r
}

// Save inserts the submission and returns the hex ObjectID of the new document.
// Store failures are reported as domain.UnavailableError.
func (r *Repository) Save(ctx context.Context, s *domain.Submission) (string, error) {
	if r.coll == nil {
		return "", domain.NewUnavailableError(checkerName, ErrNotConnected)
	}

	if r.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.writeTimeout)
		defer cancel()
	}

	doc := toDocument(s)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", domain.NewUnavailableError(checkerName, fmt.Errorf("inserting submission: %w", err))
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		return oid.Hex(), nil
	}

	return doc.ID.Hex(), nil
}

// Name implements ports.HealthChecker.
func (r *Repository) Name() string {
	return checkerName
}

// Check pings the primary.
func (r *Repository) Check(ctx context.Context) error {
	if r.ping == nil {
		return ErrNotConnected
	}

	return r.ping.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. It is a no-op when no client was created.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting mongodb: %w", err)
	}

	return nil
}
