package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/photo-inspect/internal/imageproc"
	"github.com/example/photo-inspect/internal/logging"
	"github.com/example/photo-inspect/internal/metrics"
	"github.com/example/photo-inspect/internal/rules"
	"github.com/example/photo-inspect/internal/visionai"
)

const batchCacheTTL = time.Hour

// BatchVisionPrompts is the fixed rule-to-instruction mapping sent with
// every multi-rule vision evaluation.
var BatchVisionPrompts = map[string]string{
	"vehicle_staging":     "Is the vehicle staged in a clean, well-lit, and distraction-free environment (e.g., studio, garage, or a south-facing wall)?",
	"background_clutter":  "Does the background include any distracting objects such as poles, wires, other cars, trashcans, or clutter?",
	"vehicle_cleanliness": "Is the vehicle clean and free of dirt, dust, smudges, or foreign objects (e.g., jackets, water bottles, paper floor mats)?",
	"vehicle_dressed": "Is the vehicle interior professionally arranged? Specifically check for:\n" +
		"- Headrests are lowered\n" +
		"- Front seats are evenly aligned and upright\n" +
		"- Folding rear seats are upright\n" +
		"- No windshield stickers or dealer tags\n" +
		"- Navigation screen is on\n" +
		"If the front seats are not aligned or upright, mark this as 'fail' and explain.",
	"image_steady_and_landscape": "Is the image sharp, taken in landscape orientation, and free from blur or motion artifacts?",
	"dealer_overlay_check":       "Do the images include any dealer overlays, badges, logos, or watermarks (e.g., store name, phone number, 'fresh trade' tags)?",
}

// BatchItem is one uploaded image within a batch request.
type BatchItem struct {
	Data     []byte
	Filename string
}

// AnalyzeBatch evaluates every image through the multi-rule vision path.
// Items are processed by a bounded worker pool; results always match the
// input order and one item's failure never affects its siblings.
func (uc *AnalysisUseCase) AnalyzeBatch(ctx context.Context, items []BatchItem, trainingMode bool) []*Report {
	reports := make([]*Report, len(items))

	g := new(errgroup.Group)
	g.SetLimit(uc.batchWorkers)
	for i := range items {
		i := i
		g.Go(func() error {
			reports[i] = uc.analyzeBatchItem(ctx, items[i], trainingMode)
			return nil
		})
	}
	// Workers never return errors; per-item failures land in the
	// report slots.
	_ = g.Wait()

	return reports
}

func (uc *AnalysisUseCase) analyzeBatchItem(ctx context.Context, item BatchItem, trainingMode bool) *Report {
	img, err := imageproc.Decode(item.Data)
	if err != nil {
		metrics.Analyses.WithLabelValues("batch_item", "invalid_image").Inc()
		return errorReport(err, item.Filename)
	}

	imageID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.analyze_batch_item", imageID)

	if trainingMode {
		if err := uc.saveTrainingImage(img, imageID); err != nil {
			metrics.Analyses.WithLabelValues("batch_item", "error").Inc()
			opLogger.Error("failed to save training image", zap.Error(err))
			return errorReport(err, item.Filename)
		}
	}

	hash := sha1.Sum(item.Data)
	cacheKey := fmt.Sprintf("analysis:vision:%s", hex.EncodeToString(hash[:]))

	if cached := uc.cachedReport(ctx, imageID, cacheKey); cached != nil {
		cached.Metadata.ImageID = imageID
		cached.Metadata.Filename = item.Filename
		metrics.Analyses.WithLabelValues("batch_item", "ok").Inc()
		opLogger.Info("served batch item from cache")
		return cached
	}

	raw, err := uc.vision.AnalyzeMulti(ctx, item.Data, BatchVisionPrompts)
	if err != nil {
		metrics.Analyses.WithLabelValues("batch_item", "error").Inc()
		opLogger.Error("vision evaluation failed", zap.Error(err))
		return errorReport(err, item.Filename)
	}

	parsed := visionai.ParseResults(visionai.ExtractJSONBlock(raw))

	ruleResults := make([]rules.Result, 0, len(parsed))
	suggestions := []string{}
	total := 0.0
	for _, r := range parsed {
		ruleResults = append(ruleResults, rules.Result{
			ID:          r.RuleID,
			Description: r.Description,
			Status:      r.Status,
			Confidence:  r.Confidence,
		})
		total += r.Confidence
		if r.Status == rules.StatusFail {
			suggestions = append(suggestions, r.Description)
		}
	}

	report := &Report{
		Rules:        ruleResults,
		OverallScore: round2(total / float64(len(ruleResults))),
		Suggestions:  suggestions,
		Metadata: Metadata{
			ImageSize:  img.ByteSize(),
			Dimensions: Dimensions{Width: img.Width, Height: img.Height},
			Format:     ReportFormat,
			ImageID:    imageID,
			Filename:   item.Filename,
		},
	}

	uc.storeReport(ctx, imageID, cacheKey, report)
	metrics.Analyses.WithLabelValues("batch_item", "ok").Inc()
	return report
}

// cachedReport returns a previously computed vision report for the same
// image bytes, or nil. Vision results do not depend on the mutable rule
// thresholds, so reusing them is safe.
func (uc *AnalysisUseCase) cachedReport(ctx context.Context, imageID, cacheKey string) *Report {
	var serialized string
	err := uc.withCacheRetry(ctx, imageID, "cache.get.batch_report", func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		serialized = value
		return nil
	})
	if err != nil {
		if !isCacheMiss(err) {
			logging.WithOperation(uc.logger, "cache.get.batch_report", imageID).Warn("failed to read cache", zap.Error(err))
		}
		return nil
	}

	var report Report
	if err := json.Unmarshal([]byte(serialized), &report); err != nil {
		logging.WithOperation(uc.logger, "cache.get.batch_report", imageID).Warn("failed to decode cached report", zap.Error(err))
		return nil
	}
	return &report
}

func (uc *AnalysisUseCase) storeReport(ctx context.Context, imageID, cacheKey string, report *Report) {
	serialized, err := json.Marshal(report)
	if err != nil {
		logging.WithOperation(uc.logger, "cache.set.batch_report", imageID).Warn("failed to serialize report", zap.Error(err))
		return
	}
	if err := uc.withCacheRetry(ctx, imageID, "cache.set.batch_report", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), batchCacheTTL)
	}); err != nil {
		logging.WithOperation(uc.logger, "cache.set.batch_report", imageID).Warn("failed to cache report", zap.Error(err))
	}
}

func isCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
