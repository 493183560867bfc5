package repository

import (
	"context"
	"encoding/json"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"submarine/src/database"
	"submarine/src/model"
)

// SnapshotRepository persists the engine state blob, one row per account.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a repository instance using the main database.
func NewSnapshotRepository() *SnapshotRepository {
	logger.WithField("component", "SnapshotRepository").
		Info("Creating new SnapshotRepository with MainDB")

	return &SnapshotRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SnapshotRepository) WithDB(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save upserts the serialized engine state for the account.
func (r *SnapshotRepository) Save(ctx context.Context, accountID string, state model.EngineState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	snap := model.EngineSnapshot{
		AccountID:     accountID,
		SchemaVersion: state.SchemaVersion,
		Payload:       payload,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"schema_version", "payload", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SnapshotRepository",
			"op":         "Save",
			"account_id": accountID,
		}).WithError(err).Error("Failed to save engine snapshot")
		return err
	}

	return nil
}

// Load fetches the persisted state for the account.
// Returns (nil, nil) when no snapshot exists. The schema-version decision
// (apply or discard) belongs to the engine restore path, not here.
func (r *SnapshotRepository) Load(ctx context.Context, accountID string) (*model.EngineState, error) {
	var snap model.EngineSnapshot

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":       "SnapshotRepository",
			"op":         "Load",
			"account_id": accountID,
		}).WithError(err).Error("Failed to load engine snapshot")
		return nil, err
	}

	var state model.EngineState
	if err := json.Unmarshal(snap.Payload, &state); err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SnapshotRepository",
			"op":         "Load",
			"account_id": accountID,
		}).WithError(err).Error("Failed to decode engine snapshot payload")
		return nil, err
	}

	// The row column is authoritative over whatever the payload claims.
	state.SchemaVersion = snap.SchemaVersion

	return &state, nil
}
