package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/georgemunganga/printpress-backend/internal/mail"
)

// MonthlyReporter renders the financial summary email for one month.
type MonthlyReporter interface {
	MonthlyReportEmail(ctx context.Context, year int, month time.Month) (subject, html string, err error)
}

// cronParser supports standard 5-field cron and descriptors like "@daily".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// Scheduler runs the periodic notification jobs: the monthly report email
// and the purge of expired notifications.
type Scheduler struct {
	cron     *cronlib.Cron
	repo     Repository
	reporter MonthlyReporter
	mailer   mail.Mailer
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewScheduler(repo Repository, reporter MonthlyReporter, mailer mail.Mailer, logger *slog.Logger, reportSchedule, purgeSchedule string) (*Scheduler, error) {
	s := &Scheduler{
		repo:     repo,
		reporter: reporter,
		mailer:   mailer,
		logger:   logger,
		timeout:  2 * time.Minute,
		now:      time.Now,
	}
	s.cron = cronlib.New(
		cronlib.WithParser(cronParser),
		cronlib.WithChain(cronlib.Recover(cronLogger{logger}), cronlib.SkipIfStillRunning(cronLogger{logger})),
	)

	if _, err := s.cron.AddFunc(reportSchedule, s.run("monthly_report", s.SendMonthlyReport)); err != nil {
		return nil, fmt.Errorf("monthly report schedule %q: %w", reportSchedule, err)
	}
	if _, err := s.cron.AddFunc(purgeSchedule, s.run("notification_purge", s.PurgeExpired)); err != nil {
		return nil, fmt.Errorf("notification purge schedule %q: %w", purgeSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("notification scheduler starting", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job finished", "job", name, "duration", time.Since(start))
	}
}

// SendMonthlyReport emails the previous month's summary to every active admin.
func (s *Scheduler) SendMonthlyReport(ctx context.Context) error {
	now := s.now()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)

	subject, html, err := s.reporter.MonthlyReportEmail(ctx, prev.Year(), prev.Month())
	if err != nil {
		return fmt.Errorf("build monthly report: %w", err)
	}
	admins, err := s.repo.ActiveAdmins(ctx)
	if err != nil {
		return err
	}
	var to []string
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}
	return s.mailer.Send(ctx, mail.Message{To: to, Subject: subject, HTML: html})
}

// PurgeExpired deletes notifications past their expiry.
func (s *Scheduler) PurgeExpired(ctx context.Context) error {
	n, err := s.repo.PurgeExpired(ctx, s.now())
	if err != nil {
		return err
	}
	s.logger.Info("expired notifications purged", "count", n)
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
