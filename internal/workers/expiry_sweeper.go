package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/mentorloop/internal/cache"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/services"
)

// ExpirySweeper periodically force-completes sessions nobody closed out.
type ExpirySweeper struct {
	Sessions repositories.SessionRepository
	Service  services.SessionService
	Locker   cache.Locker
	Logger   *logrus.Logger

	Interval       time.Duration
	ScheduledGrace time.Duration
	ActiveGrace    time.Duration
	NumWorkers     int
	BatchSize      int64
	LockKey        string

	Now func() time.Time

	done chan struct{}
}

// SweepResult tallies one pass. Degraded sessions were completed but some of
// their side effects failed; they are included in Completed.
type SweepResult struct {
	Candidates int
	Completed  int
	Degraded   int
	Skipped    int
	Failed     int
}

func (p *ExpirySweeper) Start(ctx context.Context) error {
	if err := p.init(); err != nil {
		return err
	}
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		for {
			p.tick(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// Done is closed once the sweep loop has exited after ctx cancellation.
func (p *ExpirySweeper) Done() <-chan struct{} { return p.done }

func (p *ExpirySweeper) init() error {
	if p.Sessions == nil || p.Service == nil {
		return errors.New("ExpirySweeper missing dependency: Sessions/Service must be set")
	}
	if p.Interval <= 0 {
		p.Interval = 5 * time.Minute
	}
	if p.ScheduledGrace <= 0 {
		p.ScheduledGrace = time.Hour
	}
	if p.ActiveGrace <= 0 {
		p.ActiveGrace = time.Hour
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 100
	}
	if p.LockKey == "" {
		p.LockKey = "lock:expiry-sweeper"
	}
	if p.Locker == nil {
		p.Locker = cache.NewLocalLocker()
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return nil
}

func (p *ExpirySweeper) tick(ctx context.Context) {
	res, err := p.SweepOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.Logger.WithError(err).Error("expiry sweep failed")
		}
		return
	}
	if res.Candidates > 0 {
		p.Logger.WithFields(logrus.Fields{
			"candidates": res.Candidates,
			"completed":  res.Completed,
			"degraded":   res.Degraded,
			"skipped":    res.Skipped,
			"failed":     res.Failed,
		}).Info("expiry sweep finished")
	}
}

// SweepOnce runs a single pass. It returns a zero result without sweeping
// when another instance holds the lock.
func (p *ExpirySweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	if err := p.init(); err != nil {
		return SweepResult{}, err
	}

	release, ok, err := p.Locker.Acquire(ctx, p.LockKey, p.Interval)
	if err != nil {
		return SweepResult{}, err
	}
	if !ok {
		p.Logger.Debug("expiry sweep skipped: lock held elsewhere")
		return SweepResult{}, nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			p.Logger.WithError(err).Warn("expiry sweep lock not released")
		}
	}()

	var total SweepResult
	// Sessions a pass could not move stay overdue at the head of the listing;
	// they are fetched past and left out so later sessions still get a turn.
	stuck := map[string]struct{}{}
	for {
		now := p.Now().UTC()
		limit := p.BatchSize + int64(len(stuck))
		listed, err := p.Sessions.ListOverdue(ctx, map[models.SessionStatus]time.Time{
			models.SessionScheduled: now.Add(-p.ScheduledGrace),
			models.SessionActive:    now.Add(-p.ActiveGrace),
		}, limit)
		if err != nil {
			return total, err
		}

		batch := make([]models.Session, 0, len(listed))
		for _, s := range listed {
			if _, ok := stuck[s.ID]; !ok {
				batch = append(batch, s)
			}
		}
		if len(batch) == 0 {
			return total, nil
		}

		res, unmoved := p.process(ctx, batch)
		total.Candidates += res.Candidates
		total.Completed += res.Completed
		total.Degraded += res.Degraded
		total.Skipped += res.Skipped
		total.Failed += res.Failed
		for _, id := range unmoved {
			stuck[id] = struct{}{}
		}

		if int64(len(listed)) < limit || ctx.Err() != nil {
			return total, nil
		}
	}
}

// process expires batch concurrently. unmoved lists the sessions that are
// still open afterwards.
func (p *ExpirySweeper) process(ctx context.Context, batch []models.Session) (SweepResult, []string) {
	var completed, degraded, skipped, failed atomic.Int64
	var mu sync.Mutex
	var unmoved []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.NumWorkers)
	for _, s := range batch {
		g.Go(func() error {
			log := p.Logger.WithFields(logrus.Fields{
				"session_id":   s.ID,
				"mentor_id":    s.MentorID,
				"mentee_id":    s.MenteeID,
				"status":       s.Status,
				"scheduled_at": s.ScheduledAt,
			})

			_, done, err := p.Service.Expire(gctx, s.ID)
			switch {
			case err != nil && done:
				completed.Add(1)
				degraded.Add(1)
				log.WithError(err).Warn("session auto-completed with side effect errors")
			case err != nil:
				failed.Add(1)
				log.WithError(err).Error("session auto-complete failed")
			case done:
				completed.Add(1)
				log.Info("session auto-completed")
			default:
				skipped.Add(1)
			}
			if !done {
				mu.Lock()
				unmoved = append(unmoved, s.ID)
				mu.Unlock()
			}
			// Per-session failures never cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	return SweepResult{
		Candidates: len(batch),
		Completed:  int(completed.Load()),
		Degraded:   int(degraded.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}, unmoved
}
