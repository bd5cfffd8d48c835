// Package scheduler 提供分析周期的定时调度
// 启动时先同步执行一次，之后按固定间隔周期执行。
// 周期之间不并发：上一个周期还没跑完时，cron 的默认行为是照常触发，
// 但分析周期远短于默认 10 分钟间隔，实际不会重叠
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner 被调度的周期任务
type Runner interface {
	RunCycle(ctx context.Context) error
}

// Scheduler 周期调度器
type Scheduler struct {
	runner   Runner
	interval time.Duration
	cron     *cron.Cron
	cancel   context.CancelFunc
}

// New 创建调度器，interval <= 0 时使用 10 分钟默认间隔
func New(runner Runner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start 同步执行首个周期，然后安排后续的定时周期
// 首个周期的失败只记日志，不阻止定时器启动
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	log.Printf("Scheduler: running initial cycle")
	if err := s.runner.RunCycle(ctx); err != nil {
		log.Printf("Scheduler: initial cycle failed: %v", err)
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.runner.RunCycle(ctx); err != nil {
			log.Printf("Scheduler: cycle failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cycle: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler: started with interval %s", s.interval)
	return nil
}

// Stop 停止定时器并取消进行中的周期
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Printf("Scheduler: stopped")
}
