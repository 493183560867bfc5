package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"submarine/src/database"
	"submarine/src/model"
)

// TradeRepository handles the append-only close ledger consumed by the
// statistics and reporting collaborators.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a repository instance using the main database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Append inserts a close record. Records are write-once; nothing updates or
// deletes them afterwards.
func (r *TradeRepository) Append(ctx context.Context, trade *model.Trade) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Append",
		"trade_id": trade.TradeID,
		"symbol":   trade.Symbol,
		"pnl":      trade.RealizedPnl.String(),
	}).Debug("Appending trade record")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Append",
		}).WithError(err).Error("Failed to append trade record")
		return err
	}

	return nil
}

// ListByAccount returns the account's closes, newest first. A non-positive
// limit returns everything.
func (r *TradeRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]model.Trade, error) {
	var trades []model.Trade

	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("closed_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&trades).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "TradeRepository",
			"op":         "ListByAccount",
			"account_id": accountID,
		}).WithError(err).Error("Failed to list trades")
		return nil, err
	}

	return trades, nil
}
