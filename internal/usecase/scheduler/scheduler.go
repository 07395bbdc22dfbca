// Package scheduler runs the daily loan jobs on wall-clock cron schedules.
// Missed runs are not caught up; the next run is computed from the current
// time at start.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"microlend/internal/domain/errs"
	"microlend/internal/infrastructure/metrics"
	"microlend/pkg/id"
)

const (
	JobReminders = "reminders"
	JobExpire    = "expire"
	JobOverdue   = "overdue"

	lockTTL    = 10 * time.Minute
	runTimeout = 5 * time.Minute
)

// Locker grants a cluster-wide exclusive run of a job.
type Locker interface {
	TryLock(ctx context.Context, name, token string, ttl time.Duration) (release func(), ok bool, err error)
}

// Result summarises one job run.
type Result struct {
	Processed int
	Failed    int
	Skipped   bool
}

type RunFunc func(ctx context.Context) (Result, error)

type Scheduler struct {
	cron *cron.Cron
	jobs map[string]RunFunc
	lock Locker
	log  logrus.FieldLogger
}

// New builds a scheduler in loc. lock may be nil for single-replica setups.
func New(loc *time.Location, lock Locker, log logrus.FieldLogger) *Scheduler {
	cl := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs: map[string]RunFunc{},
		lock: lock,
		log:  log,
	}
}

// Register adds a job. An empty spec registers it for manual runs only.
func (s *Scheduler) Register(name, spec string, run RunFunc) error {
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { _, _ = s.run(context.Background(), name) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	s.jobs[name] = run
	return nil
}

func (s *Scheduler) Names() []string {
	out := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// RunNow runs a registered job immediately, honouring the cluster lock.
func (s *Scheduler) RunNow(ctx context.Context, name string) (Result, error) {
	if _, ok := s.jobs[name]; !ok {
		return Result{}, errs.NotFound("job " + name)
	}
	return s.run(ctx, name)
}

func (s *Scheduler) run(ctx context.Context, name string) (Result, error) {
	log := s.log.WithField("job", name)
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if s.lock != nil {
		release, ok, err := s.lock.TryLock(ctx, name, id.NewID32(), lockTTL)
		if err != nil {
			metrics.SchedulerRuns.WithLabelValues(name, "skipped").Inc()
			log.WithError(err).Error("acquire job lock")
			return Result{Skipped: true}, fmt.Errorf("acquire %s lock: %w", name, err)
		}
		if !ok {
			metrics.SchedulerRuns.WithLabelValues(name, "skipped").Inc()
			log.Info("job is running on another instance")
			return Result{Skipped: true}, nil
		}
		defer release()
	}

	start := time.Now()
	res, err := s.jobs[name](ctx)
	metrics.SchedulerLoans.WithLabelValues(name, "processed").Add(float64(res.Processed))
	metrics.SchedulerLoans.WithLabelValues(name, "failed").Add(float64(res.Failed))
	fields := logrus.Fields{"processed": res.Processed, "failed": res.Failed, "took": time.Since(start).String()}
	if err != nil {
		metrics.SchedulerRuns.WithLabelValues(name, "error").Inc()
		log.WithFields(fields).WithError(err).Error("job failed")
		return res, err
	}
	metrics.SchedulerRuns.WithLabelValues(name, "ok").Inc()
	log.WithFields(fields).Info("job finished")
	return res, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and returns a context done when running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) entries() int { return len(s.cron.Entries()) }
