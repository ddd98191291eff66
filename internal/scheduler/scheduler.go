package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

type taskFn func(ctx context.Context) error

// Job runs either every Interval or on Crontab, never both.
type Job struct {
	Name             string
	Fn               taskFn
	Interval         time.Duration
	Crontab          string
	StartImmediately bool
}

// PortfolioJobs is the part of the portfolio service driven by the scheduler.
type PortfolioJobs interface {
	RefreshMarketPrices(ctx context.Context) error
	RefreshAllPortfolios(ctx context.Context) error
	CleanupReports(ctx context.Context) error
}

// PortfolioSchedule returns the periodic jobs of the tracker.
// Prices are refreshed right away so quotes are warm after a restart.
func PortfolioSchedule(cfg config.Jobs, svc PortfolioJobs) []Job {
	return []Job{
		{Name: "refresh market prices", Fn: svc.RefreshMarketPrices, Interval: cfg.RefreshPricesInterval, StartImmediately: true},
		{Name: "refresh portfolios", Fn: svc.RefreshAllPortfolios, Interval: cfg.RefreshPortfoliosInterval},
		{Name: "cleanup reports", Fn: svc.CleanupReports, Crontab: cfg.CleanupReportsCrontab},
	}
}

type Scheduler struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
}

// New creates a scheduler whose runs are cancelled after timeout; zero means no limit.
func New(timeout time.Duration) *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err.Error())
	}
	return &Scheduler{scheduler: scheduler, timeout: timeout}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("Scheduler shutdown error", slog.String("err", err.Error()))
	}
}

func (s *Scheduler) Register(jobs ...Job) error {
	for _, job := range jobs {
		definition, err := job.definition()
		if err != nil {
			return err
		}

		opts := []gocron.JobOption{
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if job.StartImmediately {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		if _, err = s.scheduler.NewJob(definition, gocron.NewTask(s.taskWithRecover(job.Fn, job.Name)), opts...); err != nil {
			slog.Error("Scheduler creating job error", slog.String("jobName", job.Name), slog.String("err", err.Error()))
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
		slog.Info("job registered", slog.String("jobName", job.Name), slog.Duration("interval", job.Interval), slog.String("crontab", job.Crontab))
	}
	return nil
}

func (j Job) definition() (gocron.JobDefinition, error) {
	switch {
	case j.Fn == nil:
		return nil, fmt.Errorf("job %q: no task", j.Name)
	case j.Interval > 0 && j.Crontab != "":
		return nil, fmt.Errorf("job %q: both interval and crontab set", j.Name)
	case j.Interval > 0:
		return gocron.DurationJob(j.Interval), nil
	case j.Crontab != "":
		return gocron.CronJob(j.Crontab, false), nil
	}
	return nil, fmt.Errorf("job %q: neither interval nor crontab set", j.Name)
}

func (s *Scheduler) taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"Panic recovered in scheduler job",
					slog.String("jobName", jobName),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		rqID := uuid.NewString()
		ctx = utils.WithRequestID(ctx, rqID)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		started := time.Now()
		slog.Info("job start", slog.String("jobName", jobName), slog.String("rqID", rqID))

		err := fn(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			slog.Error("job timed out", slog.String("jobName", jobName), slog.String("rqID", rqID), slog.Duration("timeout", s.timeout))
		case err != nil:
			slog.Error("job failed", slog.String("jobName", jobName), slog.String("rqID", rqID), slog.Any("error", err))
		default:
			slog.Info("job completed", slog.String("jobName", jobName), slog.String("rqID", rqID), slog.Duration("took", time.Since(started)))
		}
	}
}
