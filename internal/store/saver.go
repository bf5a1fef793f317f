package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSaveDelay batches rapid state changes into one write.
const DefaultSaveDelay = 100 * time.Millisecond

// Saver debounces aggregate persistence so per-keystroke mutations do not
// each hit the database. Mark schedules a save; repeated marks inside the
// delay window coalesce into one write.
type Saver struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	save  func() error
	log   zerolog.Logger
}

// NewSaver wraps a save function with debouncing. A non-positive delay uses
// the default.
func NewSaver(delay time.Duration, save func() error, log zerolog.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{delay: delay, save: save, log: log}
}

// Mark schedules a save after the delay unless one is already pending.
func (s *Saver) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		if err := s.save(); err != nil {
			s.log.Error().Err(err).Msg("debounced save failed")
		}
	})
}

// Flush cancels any pending timer and saves immediately. Persistence errors
// surface to the caller, who knows the acceptable staleness window.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save()
}

// Close flushes pending state.
func (s *Saver) Close() error {
	return s.Flush()
}
