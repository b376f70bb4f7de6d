// Package mongostore keeps session records in a MongoDB collection.
//
// EnsureIndexes must run once at startup. The partial unique index on
// (email, nickname) over Active documents is what makes the one active
// session per identity rule atomic.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "sesiones"

const (
	sessionIDIndex      = "sessionId_unique"
	activeIdentityIndex = "active_identity_unique"
)

// Store implements session.Store over a collection.
type Store struct {
	coll *mongo.Collection
}

var _ session.Store = (*Store)(nil)

// New wraps coll. Call EnsureIndexes before serving traffic.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates the unique session id index and the partial unique
// index on Active identities. Index creation is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, indexModels())
	return storageError(err)
}

func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetName(sessionIDIndex).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}, {Key: "nickname", Value: 1}},
			Options: options.Index().
				SetName(activeIdentityIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: session.StatusActive.String()}}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
	}
}

func (s *Store) FindOne(ctx context.Context, filter session.Filter) (session.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, filterDoc(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, storageError(err)
	}
	return doc.record(), nil
}

func (s *Store) InsertOne(ctx context.Context, rec session.Record) error {
	_, err := s.coll.InsertOne(ctx, fromRecord(rec))
	return storageError(err)
}

func (s *Store) UpdateOne(ctx context.Context, filter session.Filter, patch session.Patch) (int64, error) {
	if patch.IsEmpty() {
		n, err := s.coll.CountDocuments(ctx, filterDoc(filter), options.Count().SetLimit(1))
		return n, storageError(err)
	}

	res, err := s.coll.UpdateOne(ctx, filterDoc(filter), bson.D{{Key: "$set", Value: setDoc(patch)}})
	if err != nil {
		return 0, storageError(err)
	}
	return res.MatchedCount, nil
}

func (s *Store) Find(ctx context.Context, filter session.Filter) ([]session.Record, error) {
	cur, err := s.coll.Find(ctx, filterDoc(filter), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, storageError(err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError(err)
	}

	out := make([]session.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

func (s *Store) DeleteMany(ctx context.Context, filter session.Filter) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, filterDoc(filter))
	if err != nil {
		return 0, storageError(err)
	}
	return res.DeletedCount, nil
}

func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(session.ErrDuplicate, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Join(session.ErrStorageUnavailable, err)
	}
}
