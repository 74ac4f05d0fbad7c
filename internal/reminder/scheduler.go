package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

// DefaultDeliveryTimeout bounds a single reminder send
const DefaultDeliveryTimeout = 30 * time.Second

// DueSource returns the schedules of every user set for a time of day
type DueSource interface {
	DueAt(ctx context.Context, timeOfDay string) ([]domain.MedicationSchedule, error)
}

// Scheduler checks the schedules once per wall-clock minute and sends due reminders
type Scheduler struct {
	source          DueSource
	notifier        domain.Notifier
	now             func() time.Time
	catchUp         int
	deliveryTimeout time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	last       time.Time
	deliveries sync.WaitGroup
}

// New creates a scheduler. catchUpMinutes bounds how many skipped minutes are evaluated late.
func New(source DueSource, notifier domain.Notifier, catchUpMinutes int) *Scheduler {
	return &Scheduler{
		source:          source,
		notifier:        notifier,
		now:             time.Now,
		catchUp:         max(catchUpMinutes, 0),
		deliveryTimeout: DefaultDeliveryTimeout,
	}
}

// WithClock replaces the time source, used by tests
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start runs the minute loop in the background until ctx is cancelled or Stop is called
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("reminder scheduler already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(loopCtx, s.done)

	logger.Info("Reminder scheduler started", "catch_up_minutes", s.catchUp)
	return nil
}

// Stop halts future evaluations and waits for reminders already being sent
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.deliveries.Wait()
	logger.Info("Reminder scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		now := s.now()
		// re-armed every cycle so evaluation time never drifts off the minute boundary
		timer := time.NewTimer(now.Truncate(time.Minute).Add(time.Minute).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.tick(ctx)
		}
	}
}

// tick evaluates every minute since the previous tick, up to the catch-up bound
func (s *Scheduler) tick(ctx context.Context) {
	for _, minute := range s.pendingMinutes(s.now().Truncate(time.Minute)) {
		s.Evaluate(ctx, minute)
	}
}

func (s *Scheduler) pendingMinutes(current time.Time) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.last.IsZero() && !current.After(s.last) {
		return nil
	}

	first := current
	if !s.last.IsZero() {
		first = s.last.Add(time.Minute)
		if skipped := int(current.Sub(first) / time.Minute); skipped > s.catchUp {
			logger.Warn("Reminder minutes dropped", "dropped", skipped-s.catchUp, "until", utils.FormatTimeOfDay(current))
			first = current.Add(-time.Duration(s.catchUp) * time.Minute)
		}
	}
	s.last = current

	var minutes []time.Time
	for m := first; !m.After(current); m = m.Add(time.Minute) {
		minutes = append(minutes, m)
	}
	return minutes
}

// Evaluate sends a reminder for every schedule due at the minute of now and returns how many
// were dispatched. Deliveries run in the background and survive cancellation of ctx.
func (s *Scheduler) Evaluate(ctx context.Context, now time.Time) int {
	timeOfDay := utils.FormatTimeOfDay(now)
	logger.Debug("Checking reminders", "time", timeOfDay)

	due, err := s.source.DueAt(ctx, timeOfDay)
	if err != nil {
		logger.Error("Failed to read medication schedules", "time", timeOfDay, "error", err)
		return 0
	}

	for _, schedule := range due {
		s.deliver(ctx, schedule, timeOfDay)
	}
	if len(due) > 0 {
		logger.Info("Reminders dispatched", "time", timeOfDay, "count", len(due))
	}
	return len(due)
}

func (s *Scheduler) deliver(ctx context.Context, schedule domain.MedicationSchedule, timeOfDay string) {
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
		defer cancel()

		log := logger.WithUser(schedule.UserID).With("schedule_id", schedule.ID, "time", timeOfDay)
		if err := s.notifier.SendReminder(sendCtx, schedule.UserID, schedule.Name, timeOfDay); err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				log.Warn("Failed to send reminder", appErr.LogFields()...)
				return
			}
			log.Warn("Failed to send reminder", "error", err)
			return
		}
		log.Info("Reminder sent")
	}()
}
