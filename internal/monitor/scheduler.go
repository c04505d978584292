package monitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"jaldrishti/internal/logger"
)

// cronLogger adapts the zerolog logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log := logger.WithComponent("scheduler")
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log := logger.WithComponent("scheduler")
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Start schedules Tick every configured interval. The schedule is torn down when ctx
// is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	log := logger.WithComponent("scheduler")

	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.sched != nil {
		return ErrAlreadyRunning
	}

	cl := cronLogger{}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	spec := fmt.Sprintf("@every %s", s.sim.TickInterval)
	if _, err := c.AddFunc(spec, s.Tick); err != nil {
		return fmt.Errorf("failed to schedule simulator: %w", err)
	}
	c.Start()
	done := make(chan struct{})
	s.sched = c
	s.schedDone = done

	log.Info().
		Dur("interval", s.sim.TickInterval).
		Msg("simulator started")

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()
	return nil
}

// Stop removes the schedule and waits for an in-flight tick to finish. Safe to call
// when not running.
func (s *Service) Stop() {
	s.schedMu.Lock()
	c, done := s.sched, s.schedDone
	s.sched, s.schedDone = nil, nil
	s.schedMu.Unlock()

	if c == nil {
		return
	}
	close(done)
	<-c.Stop().Done()
	log := logger.WithComponent("scheduler")
	log.Info().Msg("simulator stopped")
}

// Running reports whether the simulator schedule is active.
func (s *Service) Running() bool {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	return s.sched != nil
}
