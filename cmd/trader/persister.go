package trader

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"submarine/src/model"
)

type stateSource interface {
	Snapshot() model.EngineState
}

type snapshotSaver interface {
	Save(ctx context.Context, accountID string, state model.EngineState) error
}

type tradeAppender interface {
	Append(ctx context.Context, trade *model.Trade) error
}

// persister mirrors every engine change into the database: the full state
// blob is upserted, and trade history entries it has not seen before are
// appended to the ledger. Persistence failures are logged and absorbed; the
// in-memory engine stays authoritative.
type persister struct {
	log       *logger.Entry
	eng       stateSource
	snapshots snapshotSaver
	trades    tradeAppender
	accountID string

	mu             sync.Mutex
	lastHistoryLen int
}

func newPersister(eng stateSource, snapshots snapshotSaver, trades tradeAppender, accountID string, log *logger.Entry) *persister {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}

	return &persister{
		log:            log.WithField("component", "persister"),
		eng:            eng,
		snapshots:      snapshots,
		trades:         trades,
		accountID:      accountID,
		lastHistoryLen: len(eng.Snapshot().TradeHistory),
	}
}

func (p *persister) onChange() {
	ctx := context.Background()
	state := p.eng.Snapshot()

	if err := p.snapshots.Save(ctx, p.accountID, state); err != nil {
		p.log.WithError(err).Error("Failed to persist engine snapshot")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// a restore can shrink the history; resync the watermark
	if len(state.TradeHistory) < p.lastHistoryLen {
		p.lastHistoryLen = len(state.TradeHistory)
	}

	for i := p.lastHistoryLen; i < len(state.TradeHistory); i++ {
		trade := state.TradeHistory[i]
		if err := p.trades.Append(ctx, &trade); err != nil {
			p.log.WithError(err).WithField("trade_id", trade.TradeID).
				Error("Failed to append trade record")
		}
	}
	p.lastHistoryLen = len(state.TradeHistory)
}
