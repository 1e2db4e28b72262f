package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/repository"
	"github.com/kjannette/fxjournal/internal/risk"
	"github.com/sirupsen/logrus"
)

// DaySummarizer returns the summary of one trading day.
type DaySummarizer interface {
	DaySummary(ctx context.Context, day string) (models.TradeSummary, error)
}

type DigestSender interface {
	SendDigest(day string, sum models.TradeSummary, alerts []string)
}

type DigestSchedulerConfig struct {
	Interval  time.Duration  // how often to look for a day rollover
	DayOffset int            // seconds east of UTC
	Guardian  *risk.Guardian // optional threshold alerts
	Now       func() time.Time
}

// DigestScheduler posts the finished trading day's summary once the day
// rolls over.
type DigestScheduler struct {
	journal DaySummarizer
	sender  DigestSender
	cfg     DigestSchedulerConfig
	log     *logrus.Entry

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	lastDay string
}

func NewDigestScheduler(journal DaySummarizer, sender DigestSender, cfg DigestSchedulerConfig) *DigestScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DigestScheduler{
		journal: journal,
		sender:  sender,
		cfg:     cfg,
		log:     logrus.WithField("component", "digest-scheduler"),
	}
}

func (s *DigestScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	// Seed the current day so a restart doesn't resend yesterday.
	if _, err := s.Check(context.Background()); err != nil {
		s.log.WithError(err).Warn("initial check failed")
	}

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				if _, err := s.Check(ctx); err != nil {
					s.log.WithError(err).Error("digest check failed")
				}
				cancel()
			}
		}
	}()

	s.log.Infof("started (checking every %s)", s.cfg.Interval)
}

// Stop halts the ticker and waits for an in-flight check to finish.
func (s *DigestScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	s.log.Info("stopped")
}

func (s *DigestScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Check sends the digest for the last seen trading day if the day has
// changed since the previous call. The first call only records the day.
func (s *DigestScheduler) Check(ctx context.Context) (bool, error) {
	today := repository.TradingDay(s.cfg.Now().Unix(), s.cfg.DayOffset)

	s.mu.Lock()
	last := s.lastDay
	if last == "" || last == today {
		s.lastDay = today
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	if err := s.SendNow(ctx, last); err != nil {
		// lastDay stays put so the next tick retries
		return false, err
	}

	s.mu.Lock()
	s.lastDay = today
	s.mu.Unlock()
	return true, nil
}

// SendNow summarizes day and sends it regardless of the schedule.
func (s *DigestScheduler) SendNow(ctx context.Context, day string) error {
	sum, err := s.journal.DaySummary(ctx, day)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", day, err)
	}
	var alerts []string
	if s.cfg.Guardian != nil {
		alerts = s.cfg.Guardian.DayCheck(sum)
	}
	s.sender.SendDigest(day, sum, alerts)
	s.log.WithFields(logrus.Fields{
		"day":    day,
		"trades": sum.Count,
		"profit": sum.Profit,
		"alerts": len(alerts),
	}).Info("digest sent")
	return nil
}
