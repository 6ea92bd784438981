package keeper

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/logger"
)

// Schedules holds the cron specs (with seconds) of the keeper jobs.
// An empty spec disables the job.
type Schedules struct {
	Round      string // Full distribute, earn, harvest round
	Earn       string
	Harvest    string
	Distribute string
}

// Scheduler runs keeper jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	keeper *Keeper
	ctx    context.Context
	logger zerolog.Logger
}

// NewScheduler creates a scheduler for k. Jobs run with ctx.
func NewScheduler(ctx context.Context, k *Keeper) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		keeper: k,
		ctx:    ctx,
		logger: logger.GetForComponent("keeper_scheduler"),
	}
}

// Register adds the round job and the standalone earn, harvest and distribute jobs.
func (s *Scheduler) Register(schedules Schedules) error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{name: "round", spec: schedules.Round, run: s.roundJob},
		{name: "distribute", spec: schedules.Distribute, run: s.distributeJob},
		{name: "earn", spec: schedules.Earn, run: s.earnJob},
		{name: "harvest", spec: schedules.Harvest, run: s.harvestJob},
	}

	for _, job := range jobs {
		if job.spec == "" {
			s.logger.Info().Str("job", job.name).Msg("Keeper job disabled")
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("register %s job: %w", job.name, err)
		}
		s.logger.Info().Str("job", job.name).Str("spec", job.spec).Msg("Keeper job registered")
	}
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", s.Jobs()).Msg("Keeper scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Keeper scheduler stopped")
}

func (s *Scheduler) roundJob() {
	// Errors are logged by the keeper.
	_, _ = s.keeper.RunRound(s.ctx)
}

func (s *Scheduler) distributeJob() {
	_ = s.keeper.Distribute(s.ctx)
}

func (s *Scheduler) earnJob() {
	_, _ = s.keeper.Earn(s.ctx)
}

func (s *Scheduler) harvestJob() {
	_, _ = s.keeper.Harvest(s.ctx)
}
