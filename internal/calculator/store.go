package calculator

import (
	"context"
	"errors"
	"sync"
	"time"

	"calculator-brain/internal/engine"
	"calculator-brain/internal/observability"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrTooManySessions is returned by Store.Create once MaxSessions is reached.
var ErrTooManySessions = errors.New("too many calculator sessions")

// Config holds the settings shared by every session.
type Config struct {
	MaxSessions  int
	SessionTTL   time.Duration
	ClearOnError bool
	NumberFormat engine.NumberFormat
}

// DefaultConfig mirrors the reference keypad: guard failures clear the
// engine and numbers show up to six fractional digits.
func DefaultConfig() Config {
	return Config{
		MaxSessions:  1000,
		SessionTTL:   30 * time.Minute,
		ClearOnError: true,
		NumberFormat: engine.DefaultNumberFormat,
	}
}

// Store keeps the live sessions keyed by ID.
type Store struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session

	desc *prometheus.Desc
}

func NewStore(cfg Config) *Store {
	return &Store{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		desc: prometheus.NewDesc(
			"calculator_sessions_active",
			"Number of live calculator sessions",
			nil, nil,
		),
	}
}

// Create opens a new session.
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	sess := newSession(uuid.NewString(), s.cfg, time.Now())
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many were
// removed.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SweepEvery runs Sweep with the configured TTL until ctx is done.
func (s *Store) SweepEvery(ctx context.Context, interval time.Duration) {
	if s.cfg.SessionTTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := s.Sweep(now, s.cfg.SessionTTL)
			if removed == 0 {
				continue
			}
			sessionsGauge.Add(ctx, -int64(removed))
			observability.Logger.Info("expired calculator sessions",
				zap.Int("removed", removed),
				zap.Int("remaining", s.Len()),
			)
		}
	}
}

// Describe implements prometheus.Collector.
func (s *Store) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.desc
}

// Collect implements prometheus.Collector.
func (s *Store) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(s.desc, prometheus.GaugeValue, float64(s.Len()))
}
