package scheduler

import "context"

// Specs are standard five-field cron expressions; empty disables the timer.
type Specs struct {
	Reminders string
	Expiry    string
	Overdue   string
}

type Lifecycle interface {
	SendReminders(ctx context.Context) (int, error)
	MarkOverdue(ctx context.Context) (marked, failed int, err error)
}

type Funding interface {
	ExpireRequests(ctx context.Context) (expired, failed int, err error)
}

// RegisterDefaults wires the three loan jobs.
func (s *Scheduler) RegisterDefaults(specs Specs, lc Lifecycle, fu Funding) error {
	jobs := []struct {
		name, spec string
		run        RunFunc
	}{
		{JobReminders, specs.Reminders, func(ctx context.Context) (Result, error) {
			n, err := lc.SendReminders(ctx)
			return Result{Processed: n}, err
		}},
		{JobExpire, specs.Expiry, func(ctx context.Context) (Result, error) {
			n, failed, err := fu.ExpireRequests(ctx)
			return Result{Processed: n, Failed: failed}, err
		}},
		{JobOverdue, specs.Overdue, func(ctx context.Context) (Result, error) {
			n, failed, err := lc.MarkOverdue(ctx)
			return Result{Processed: n, Failed: failed}, err
		}},
	}
	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.run); err != nil {
			return err
		}
	}
	return nil
}
