package profilestorage

import (
	"context"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MongoCollection = "profiles"

// MongoStorage keeps one document per profile. Absent values are omitted from
// the document and injuries are always stored as an array.
type MongoStorage struct {
	c    *mongo.Collection
	seen storage.Seen[*profile.Profile]
}

func NewMongoStorage(c *mongo.Collection) *MongoStorage {
	return &MongoStorage{c: c}
}

// EnsureMongoIndexes creates the unique email index of the profiles collection.
func EnsureMongoIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("profiles_email_key"),
	})
	if err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *MongoStorage) Add(ctx context.Context, p *profile.Profile) error {
	if p.Injuries == nil {
		p.Injuries = profile.Injuries{}
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return profile.ErrProfileExists
		}
		return storage.InternalError(err)
	}

	s.seen.Mark(p.ID, p)
	return nil
}

func (s *MongoStorage) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, storage.InternalError(err)
	}
	p.Injuries = p.Injuries.Clean()

	out := &p
	s.seen.Mark(out.ID, out)
	return out, nil
}

// Persist replaces the whole document, so fields cleared in the profile are
// removed from storage. Concurrent saves are last write wins.
func (s *MongoStorage) Persist(ctx context.Context, p *profile.Profile) error {
	if p.Injuries == nil {
		p.Injuries = profile.Injuries{}
	}
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return storage.InternalError(err)
	}
	if res.MatchedCount == 0 {
		return profile.ErrProfileNotFound
	}

	s.seen.Mark(p.ID, p)
	return nil
}

func (s *MongoStorage) CollectEvents() []domain.Event {
	return s.seen.Collect()
}

func (s *MongoStorage) Close() error {
	s.seen.Clear()
	return nil
}
