package config

import (
	"encoding/json"
	"sync"
	"time"
)

// Throttle bounds in milliseconds.
const (
	MinThrottleMs = 0
	MaxThrottleMs = 500
)

// Settings holds the two user-configurable knobs. Both can change at runtime
// and take effect on the next visibility decision or throttled refresh; no
// reload or re-subscription is needed. Safe for concurrent use because the
// HTTP settings endpoint and canvas event loops run on different goroutines.
type Settings struct {
	mu                 sync.RWMutex
	hoverOutsideCombat bool
	refreshThrottleMs  int
}

func NewSettings(cfg Config) *Settings {
	s := &Settings{}
	s.SetHoverOutsideCombat(cfg.HoverOutsideCombat)
	s.SetRefreshThrottleMs(cfg.RefreshThrottleMs)
	return s
}

// HoverOutsideCombat reports whether labels may render without an active
// combat encounter.
func (s *Settings) HoverOutsideCombat() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hoverOutsideCombat
}

func (s *Settings) SetHoverOutsideCombat(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hoverOutsideCombat = v
}

// RefreshThrottle returns the bulk-refresh throttle window. Zero disables
// throttling.
func (s *Settings) RefreshThrottle() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.refreshThrottleMs) * time.Millisecond
}

// SetRefreshThrottleMs clamps ms into [MinThrottleMs, MaxThrottleMs].
func (s *Settings) SetRefreshThrottleMs(ms int) {
	if ms < MinThrottleMs {
		ms = MinThrottleMs
	}
	if ms > MaxThrottleMs {
		ms = MaxThrottleMs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshThrottleMs = ms
}

// settingsJSON is the persisted wire form of Settings.
type settingsJSON struct {
	HoverOutsideCombat bool `json:"hoverOutsideCombat"`
	RefreshThrottleMs  int  `json:"refreshThrottleMs"`
}

// MarshalJSON serializes the current values for persistence.
func (s *Settings) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(settingsJSON{
		HoverOutsideCombat: s.hoverOutsideCombat,
		RefreshThrottleMs:  s.refreshThrottleMs,
	})
}

// UnmarshalJSON restores persisted values, clamping the throttle.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var v settingsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.SetHoverOutsideCombat(v.HoverOutsideCombat)
	s.SetRefreshThrottleMs(v.RefreshThrottleMs)
	return nil
}
