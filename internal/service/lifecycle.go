package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
)

// Lifecycle 将已过时间的 scheduled 答辩结转为 completed
// onRead 为 true 时在读取答辩前执行，后台 Sweeper 也会执行，二者共用同一条幂等批量更新
type Lifecycle struct {
	repo   *repository.Repository
	clock  clock.Clock
	onRead bool
	logger *zap.Logger
}

// NewLifecycle 创建状态结转器
func NewLifecycle(repo *repository.Repository, clk clock.Clock, onRead bool, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{repo: repo, clock: clk, onRead: onRead, logger: logger}
}

// ReconcileStatuses 结转已过期答辩并返回影响行数，cancelled 与 completed 不受影响
func (l *Lifecycle) ReconcileStatuses(ctx context.Context) (int64, error) {
	n, err := l.repo.Defense.CompleteElapsed(ctx, l.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.logger.Info("defenses completed", zap.Int64("count", n))
	}
	return n, nil
}

// beforeRead 读取答辩前先结转；失败只记日志，读取照常进行（状态可能滞后）
func (l *Lifecycle) beforeRead(ctx context.Context) {
	if l == nil || !l.onRead {
		return
	}
	if _, err := l.ReconcileStatuses(ctx); err != nil {
		l.logger.Warn("reconcile defense statuses failed", zap.Error(err))
	}
}

// Sweeper 按固定周期执行 ReconcileStatuses，直到停止
type Sweeper struct {
	lifecycle *Lifecycle
	interval  time.Duration
	logger    *zap.Logger

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewSweeper 创建巡检器，需调用 Start 启动
func NewSweeper(lifecycle *Lifecycle, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		lifecycle: lifecycle,
		interval:  interval,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start 在独立 goroutine 中启动巡检循环；已启动或已停止时为空操作
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("defense sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if _, err := s.lifecycle.ReconcileStatuses(ctx); err != nil {
				s.logger.Error("defense sweep failed", zap.Error(err))
			}
		}
	}
}

// Stop 结束循环并等待进行中的巡检完成
// 未启动的巡检器调用 Stop 立即返回
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}
