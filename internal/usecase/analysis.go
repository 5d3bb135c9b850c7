package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/photo-inspect/internal/imageproc"
	"github.com/example/photo-inspect/internal/logging"
	"github.com/example/photo-inspect/internal/metrics"
	"github.com/example/photo-inspect/internal/rules"
)

// VisionAnalyzer is the external vision capability as seen by the
// orchestration layer.
type VisionAnalyzer interface {
	Configured() bool
	Analyze(ctx context.Context, imageBytes []byte, prompt string) string
	AnalyzeMulti(ctx context.Context, imageBytes []byte, prompts map[string]string) (string, error)
}

// FeedbackRecorder persists training feedback and drives threshold
// drift.
type FeedbackRecorder interface {
	Record(ctx context.Context, ruleID, imageID string, isCorrect bool) error
}

// AnalysisUseCase orchestrates image analysis, batch evaluation, and
// training feedback.
type AnalysisUseCase struct {
	rules          *rules.Store
	registry       []rules.CheckRule
	vision         VisionAnalyzer
	feedback       FeedbackRecorder
	cache          Cache
	imagesDir      string
	trainingDir    string
	batchWorkers   int
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewAnalysisUseCase constructs a new use case instance. A nil cache
// degrades to a no-op cache.
func NewAnalysisUseCase(
	ruleStore *rules.Store,
	registry []rules.CheckRule,
	vision VisionAnalyzer,
	feedback FeedbackRecorder,
	cache Cache,
	imagesDir, trainingDir string,
	batchWorkers int,
	logger *zap.Logger,
) *AnalysisUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if batchWorkers <= 0 {
		batchWorkers = 4
	}
	return &AnalysisUseCase{
		rules:          ruleStore,
		registry:       registry,
		vision:         vision,
		feedback:       feedback,
		cache:          cache,
		imagesDir:      imagesDir,
		trainingDir:    trainingDir,
		batchWorkers:   batchWorkers,
		logger:         logger.Named("analysis_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AnalyzeImage runs the heuristic checks against one uploaded image and
// assembles a report. With extended set, the registry check rules are
// evaluated as well and appended after the heuristic results; the
// overall score stays the mean of the heuristic confidences.
func (uc *AnalysisUseCase) AnalyzeImage(ctx context.Context, data []byte, filename string, trainingMode, extended bool) (*Report, error) {
	img, err := imageproc.Decode(data)
	if err != nil {
		metrics.Analyses.WithLabelValues("single", "invalid_image").Inc()
		return nil, err
	}

	imageID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.analyze_image", imageID)

	if trainingMode {
		if err := uc.saveTrainingImage(img, imageID); err != nil {
			metrics.Analyses.WithLabelValues("single", "error").Inc()
			opLogger.Error("failed to save training image", zap.Error(err))
			return nil, err
		}
	}

	eval := rules.EvaluateHeuristics(img, uc.rules.List())
	report := &Report{
		Rules:        eval.Results,
		OverallScore: eval.Overall,
		Suggestions:  eval.Suggestions,
		Metadata: Metadata{
			ImageSize:  img.ByteSize(),
			Dimensions: Dimensions{Width: img.Width, Height: img.Height},
			Format:     ReportFormat,
			ImageID:    imageID,
			Filename:   filename,
		},
	}

	if extended {
		for _, check := range uc.registry {
			res := check.Check(ctx, img, data)
			report.Rules = append(report.Rules, res)
			if res.Status == rules.StatusFail {
				report.Suggestions = append(report.Suggestions, res.Description)
			}
		}
	}

	metrics.Analyses.WithLabelValues("single", "ok").Inc()
	opLogger.Info("image analyzed",
		zap.Float64("overall_score", report.OverallScore),
		zap.Int("rules", len(report.Rules)),
		zap.Bool("extended", extended))
	return report, nil
}

// Train records feedback for one (rule, image) pair.
func (uc *AnalysisUseCase) Train(ctx context.Context, ruleID, imageID string, isCorrect bool) error {
	return uc.feedback.Record(ctx, ruleID, imageID, isCorrect)
}

func (uc *AnalysisUseCase) saveTrainingImage(img *imageproc.Image, imageID string) error {
	data, err := imageproc.EncodeJPEG(img)
	if err != nil {
		return logging.NewOperationError("usecase.encode_training_image", imageID, err)
	}
	path := filepath.Join(uc.imagesDir, imageID+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return logging.NewOperationError("usecase.save_training_image", imageID, err)
	}
	return nil
}

func (uc *AnalysisUseCase) withCacheRetry(ctx context.Context, imageID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, imageID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, imageID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, imageID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("cache operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Warn("cache operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, imageID, err)
		}

		opLogger.Warn("transient cache error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, imageID, err)
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
