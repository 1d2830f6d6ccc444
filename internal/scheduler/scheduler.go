package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec fires daily at 21:00 UTC.
const DefaultSpec = "0 21 * * *"

// Scheduler runs the periodic activity report.
type Scheduler struct {
	mu         sync.Mutex
	cron       *cron.Cron
	spec       string
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	running    bool
}

// New creates a scheduler for the given cron spec (standard five fields,
// evaluated in UTC). An empty spec means DefaultSpec.
func New(spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop. Without a report
// function it does nothing.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}
	if s.reportFunc == nil {
		s.logger.Warn("report function not set, scheduler will not generate reports")
		return nil
	}

	report := s.reportFunc
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("running scheduled report", zap.String("spec", s.spec))
		if err := report(s.ctx); err != nil {
			s.logger.Error("scheduled report failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// RunNow runs the report function immediately.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	report := s.reportFunc
	s.mu.Unlock()
	if report == nil {
		return errors.New("report function not set")
	}
	return report(ctx)
}

// Stop waits for a running job to finish and cancels the job context.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
	}
	s.cancel()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && len(s.cron.Entries()) > 0
}
