/*
scheduler.go - Automated income settlement

PURPOSE:
  Income rows entered with a future date have no balance effect until
  their date arrives. The scheduler periodically settles every workspace
  so those rows reach the balance without anyone pressing "settle".

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Each workspace is settled on behalf of its owner, one unit per workspace
  - A failing workspace is logged and does not stop the others

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSettlementScheduler(engine, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - income.go: SettleIncome endpoint (manual settlement of one workspace)
  - ledger/income.go: SettleAllDueIncome
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/budget-ledger/ledger"
)

// SettlementScheduler settles due income across all workspaces.
type SettlementScheduler struct {
	Engine        *ledger.Engine
	CheckInterval time.Duration
	Enabled       bool
	Log           zerolog.Logger
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSettlementScheduler creates a new scheduler.
func NewSettlementScheduler(engine *ledger.Engine, log zerolog.Logger) *SettlementScheduler {
	return &SettlementScheduler{
		Engine:        engine,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Log:           log,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (s *SettlementScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info().Msg("Settlement scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	s.Log.Info().Dur("interval", s.CheckInterval).Msg("Settlement scheduler started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *SettlementScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info().Msg("Settlement scheduler stopped")
	}
}

func (s *SettlementScheduler) run() {
	defer s.wg.Done()

	s.RunNow()

	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow settles all workspaces once and returns the number of rows
// settled.
func (s *SettlementScheduler) RunNow() int {
	ctx := context.Background()
	now := s.Now()

	settled, err := s.Engine.SettleAllDueIncome(ctx, now)
	if err != nil {
		s.Log.Error().Err(err).Int("settled", settled).Msg("Income settlement finished with errors")
		return settled
	}
	if settled > 0 {
		s.Log.Info().Int("settled", settled).Msg("Settled due income")
	} else {
		s.Log.Debug().Msg("No income due")
	}
	return settled
}

// NextRunTime returns when the next scheduled check will occur.
func (s *SettlementScheduler) NextRunTime() time.Time {
	return s.Now().Add(s.CheckInterval)
}
