// Package audit persists the XP ledger asynchronously in batches.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry describes one applied XP grant.
type Entry struct {
	TraceID       string
	UserID        int64
	Source        string
	Amount        int64
	PreviousXP    int64
	NewXP         int64
	PreviousLevel int
	NewLevel      int
	Meta          interface{}
}

// Service writes ledger entries on a background worker.
type Service struct {
	db       *gorm.DB
	ch       chan *model.XPLedgerEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.XPLedgerEntry, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry. When the queue is full the entry is dropped and a
// warning is logged; the XP change itself is already committed.
func (svc *Service) Log(entry Entry) {
	var meta datatypes.JSON
	if entry.Meta != nil {
		if b, err := json.Marshal(entry.Meta); err == nil {
			meta = datatypes.JSON(b)
		}
	}
	record := &model.XPLedgerEntry{
		TraceID:       entry.TraceID,
		UserID:        entry.UserID,
		Source:        entry.Source,
		Amount:        entry.Amount,
		PreviousXP:    entry.PreviousXP,
		NewXP:         entry.NewXP,
		PreviousLevel: entry.PreviousLevel,
		NewLevel:      entry.NewLevel,
		Meta:          meta,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("xp ledger queue full, dropping entry",
			zap.Int64("user_id", entry.UserID),
			zap.String("source", entry.Source),
			zap.Int64("amount", entry.Amount))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.XPLedgerEntry, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("xp ledger batch write failed",
				zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

type traceKey struct{}

// WithTraceID attaches a request trace id to ctx so ledger entries written
// for that request can be correlated with its logs.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the trace id carried by ctx, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
