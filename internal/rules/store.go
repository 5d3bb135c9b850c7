package rules

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

const (
	correctFactor   = 0.95
	incorrectFactor = 1.05
)

// Store holds the mutable rule set and persists it to a JSON file.
// Threshold updates are serialized by the mutex; the file on disk always
// reflects the last completed adjustment.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	rules []*Rule
}

// NewStore loads the rule set from path, seeding the file with the
// default rules when it does not exist yet.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger.Named("rules_store")}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.rules); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		s.rules = DefaultRules()
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		s.logger.Info("seeded default rules", zap.String("path", path))
	default:
		return nil, err
	}

	return s, nil
}

// List returns a snapshot of the current rule set in registry order.
func (s *Store) List() []*Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Rule, len(s.rules))
	for i, r := range s.rules {
		copied := *r
		out[i] = &copied
	}
	return out
}

// Get returns a copy of the rule with the given id.
func (s *Store) Get(id string) (*Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.ID == id {
			copied := *r
			return &copied, true
		}
	}
	return nil, false
}

// Count reports how many rules are loaded.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// AdjustThreshold applies one multiplicative drift step to the first
// rule matching id: x0.95 when the evaluation was judged correct
// (loosen), x1.05 when incorrect (tighten). The drift is intentionally
// unclamped. An unknown id is a no-op reported as (false, nil).
func (s *Store) AdjustThreshold(id string, correct bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.ID != id {
			continue
		}
		if correct {
			r.Threshold *= correctFactor
		} else {
			r.Threshold *= incorrectFactor
		}
		if err := s.persistLocked(); err != nil {
			return true, err
		}
		s.logger.Info("adjusted rule threshold",
			zap.String("rule_id", id),
			zap.Bool("correct", correct),
			zap.Float64("threshold", r.Threshold))
		return true, nil
	}
	return false, nil
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.rules, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
