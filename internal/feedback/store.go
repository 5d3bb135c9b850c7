package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/example/photo-inspect/internal/logging"
	"github.com/example/photo-inspect/internal/metrics"
	"github.com/example/photo-inspect/internal/rules"
)

// Record is one persisted training feedback entry. Records are written
// once and never read back by the running process; they exist as an
// audit trail for offline threshold tuning.
type Record struct {
	Timestamp string `json:"timestamp"`
	RuleID    string `json:"ruleId"`
	IsCorrect bool   `json:"isCorrect"`
	ImageID   string `json:"imageId"`
}

// Store persists feedback records and drives rule threshold drift.
type Store struct {
	dir    string
	rules  *rules.Store
	logger *zap.Logger
}

// NewStore creates a feedback store writing into dir.
func NewStore(dir string, ruleStore *rules.Store, logger *zap.Logger) *Store {
	return &Store{dir: dir, rules: ruleStore, logger: logger.Named("feedback_store")}
}

// Record persists one feedback entry and nudges the matching rule's
// threshold. Feedback referencing an unknown rule is still recorded
// and reported as success; only persistence failures are errors.
func (s *Store) Record(ctx context.Context, ruleID, imageID string, isCorrect bool) error {
	if err := ctx.Err(); err != nil {
		return logging.NewOperationError("feedback.record", imageID, err)
	}

	entry := Record{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RuleID:    ruleID,
		IsCorrect: isCorrect,
		ImageID:   imageID,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		metrics.Feedback.WithLabelValues("error").Inc()
		return logging.NewOperationError("feedback.marshal_record", imageID, err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", imageID, ruleID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.Feedback.WithLabelValues("error").Inc()
		return logging.NewOperationError("feedback.write_record", imageID, err)
	}

	found, err := s.rules.AdjustThreshold(ruleID, isCorrect)
	if err != nil {
		metrics.Feedback.WithLabelValues("error").Inc()
		return logging.NewOperationError("feedback.adjust_threshold", imageID, err)
	}
	if !found {
		metrics.Feedback.WithLabelValues("unknown_rule").Inc()
		s.logger.Warn("feedback for unknown rule recorded without threshold change",
			zap.String("rule_id", ruleID), zap.String("image_id", imageID))
		return nil
	}

	metrics.Feedback.WithLabelValues("ok").Inc()
	return nil
}
