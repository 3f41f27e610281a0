package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

const (
	storeCollection  = "store"
	backupCollection = "backups"
	currentDocID     = "current"
)

type storeDocument struct {
	ID      string       `bson:"_id"`
	Store   models.Store `bson:"store"`
	SavedAt time.Time    `bson:"saved_at"`
}

type backupDocument struct {
	ID      string       `bson:"_id"`
	Store   models.Store `bson:"store"`
	SavedAt time.Time    `bson:"saved_at"`
}

// MongoRepository keeps the document as a single replaced record and the
// snapshot history as a code-capped collection.
type MongoRepository struct {
	client    *mongo.Client
	dbName    string
	backupCap int
	logger    *zap.Logger
}

// NewMongoRepository connects and verifies the MongoDB deployment.
func NewMongoRepository(ctx context.Context, uri, dbName string, backupCap int, logger *zap.Logger) (*MongoRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backupCap <= 0 {
		backupCap = defaultBackupCap
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoRepository{client: client, dbName: dbName, backupCap: backupCap, logger: logger}, nil
}

func (r *MongoRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Load reads the current document, returning an empty store when none exists.
func (r *MongoRepository) Load(ctx context.Context) (*models.Store, error) {
	var doc storeDocument
	err := r.collection(storeCollection).FindOne(ctx, bson.M{"_id": currentDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Info("no store document found, starting empty")
		return models.NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load store document: %w", err)
	}
	return &doc.Store, nil
}

// Save replaces the current document in one upsert.
func (r *MongoRepository) Save(ctx context.Context, s *models.Store) error {
	s.Version = models.StoreVersion
	s.SavedAt = time.Now().UTC()

	doc := storeDocument{ID: currentDocID, Store: *s, SavedAt: s.SavedAt}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection(storeCollection).ReplaceOne(ctx, bson.M{"_id": currentDocID}, doc, opts); err != nil {
		return fmt.Errorf("save store document: %w", err)
	}
	return nil
}

// Backup inserts a snapshot and deletes the oldest entries beyond the cap.
func (r *MongoRepository) Backup(ctx context.Context, s *models.Store) (BackupInfo, error) {
	now := time.Now().UTC()
	id := now.Format(snapshotLayout)
	doc := backupDocument{ID: id, Store: *s, SavedAt: now}

	if _, err := r.collection(backupCollection).InsertOne(ctx, doc); err != nil {
		return BackupInfo{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := r.prune(ctx); err != nil {
		r.logger.Warn("snapshot pruning failed", zap.Error(err))
	}

	r.logger.Info("snapshot written", zap.String("snapshot_id", id))
	return BackupInfo{ID: id, Timestamp: now}, nil
}

// ListBackups returns the snapshot history, most recent first.
func (r *MongoRepository) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "saved_at", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "saved_at": 1})
	cursor, err := r.collection(backupCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []BackupInfo
	for cursor.Next(ctx) {
		var doc backupDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode snapshot listing: %w", err)
		}
		infos = append(infos, BackupInfo{ID: doc.ID, Timestamp: doc.SavedAt})
	}
	return infos, cursor.Err()
}

// Restore reads one snapshot by id.
func (r *MongoRepository) Restore(ctx context.Context, id string) (*models.Store, error) {
	var doc backupDocument
	err := r.collection(backupCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUnknownSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return &doc.Store, nil
}

// Close disconnects from MongoDB.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) prune(ctx context.Context) error {
	infos, err := r.ListBackups(ctx)
	if err != nil {
		return err
	}
	for i := r.backupCap; i < len(infos); i++ {
		if _, err := r.collection(backupCollection).DeleteOne(ctx, bson.M{"_id": infos[i].ID}); err != nil {
			return err
		}
		r.logger.Debug("snapshot evicted", zap.String("snapshot_id", infos[i].ID))
	}
	return nil
}
