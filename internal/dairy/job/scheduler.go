// Package job 定时任务
package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout 单次任务超时
const jobTimeout = 5 * time.Minute

// OverdueMarker 逾期发票标记
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// TokenPurger 过期注销记录清理
type TokenPurger interface {
	PurgeRevoked(ctx context.Context) (int64, error)
}

// Job 定时任务定义
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Jobs 账本的定时任务
func Jobs(overdueSchedule string, invoices OverdueMarker, tokens TokenPurger, now func() time.Time) []Job {
	if now == nil {
		now = time.Now
	}
	return []Job{
		{
			Name:     "mark-overdue-invoices",
			Schedule: overdueSchedule,
			Run: func(ctx context.Context) error {
				_, err := invoices.MarkOverdue(ctx, now())
				return err
			},
		},
		{
			Name:     "purge-revoked-tokens",
			Schedule: "@hourly",
			Run: func(ctx context.Context) error {
				_, err := tokens.PurgeRevoked(ctx)
				return err
			},
		},
	}
}

// Scheduler cron调度器
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler 按业务时区注册任务
func NewScheduler(loc *time.Location, logger *zap.Logger, jobs []Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithLogger(zapLogger{logger.Sugar()})),
		logger: logger,
	}
	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.Schedule, func() { s.run(j) }); err != nil {
			return nil, err
		}
		logger.Info("cron job registered", zap.String("job", j.Name), zap.String("schedule", j.Schedule))
	}
	return s, nil
}

func (s *Scheduler) run(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.logger.Error("cron job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	s.logger.Info("cron job finished", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}

// Start 启动
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止并等待运行中的任务
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("cron jobs still running at shutdown")
	}
}

// zapLogger cron.Logger适配
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
