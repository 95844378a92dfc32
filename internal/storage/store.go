// Package storage provides the regeneration run ledger.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunLedger records regeneration runs.
type RunLedger interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	GetRecentRuns(ctx context.Context, kind models.Kind, limit int) ([]models.RunRecord, error)
}

// Store keeps run records in MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	runs   *mongo.Collection
}

// NewStore creates a new storage connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &Store{
		client: client,
		db:     db,
		runs:   db.Collection("runs"),
	}

	if err := store.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create run indexes")
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "run_id", Value: 1}, {Key: "kind", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "started_at", Value: -1}}},
		{Keys: bson.D{{Key: "started_at", Value: -1}}},
	}
	_, err := s.runs.Indexes().CreateMany(ctx, indexes)
	return err
}

// SaveRun inserts a run record.
func (s *Store) SaveRun(ctx context.Context, run *models.RunRecord) error {
	_, err := s.runs.InsertOne(ctx, run)
	return err
}

// GetRecentRuns returns the newest runs, optionally for one kind.
func (s *Store) GetRecentRuns(ctx context.Context, kind models.Kind, limit int) ([]models.RunRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}

	cursor, err := s.runs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.RunRecord
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// MemoryLedger keeps run records for the life of the process. It is used
// when no MongoDB is configured.
type MemoryLedger struct {
	mu   sync.Mutex
	runs []models.RunRecord
}

// NewMemoryLedger creates an empty in-process ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) SaveRun(ctx context.Context, run *models.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MemoryLedger) GetRecentRuns(ctx context.Context, kind models.Kind, limit int) ([]models.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []models.RunRecord
	for _, r := range m.runs {
		if kind == "" || r.Kind == kind {
			runs = append(runs, r)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
