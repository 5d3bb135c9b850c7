package rules

import (
	"math"

	"github.com/example/photo-inspect/internal/imageproc"
)

// Normalization constants for the heuristic signals.
const (
	blurNormalizer     = 500.0
	edgeLowThreshold   = 100.0
	edgeHighThreshold  = 200.0
	edgeNormalizer     = 10.0
	colorStdNormalizer = 100.0
)

var heuristicSuggestions = map[string]string{
	"rule1": "Consider taking the photo in better lighting conditions",
	"rule2": "Ensure the entire vehicle is visible in the frame",
	"rule3": "Try to take the photo against a cleaner background",
}

// Evaluation aggregates the outcome of the built-in heuristic checks
// for one image.
type Evaluation struct {
	Results     []Result
	Overall     float64
	Suggestions []string
}

// EvaluateHeuristics runs the three built-in checks against a decoded
// image using the thresholds currently held by ruleset. A rule passes
// iff its normalized raw score strictly exceeds the threshold;
// confidence is the score scaled to 0-100.
func EvaluateHeuristics(img *imageproc.Image, ruleset []*Rule) *Evaluation {
	gray := img.Grayscale()

	quality := clamp01(imageproc.LaplacianVariance(gray, img.Width, img.Height) / blurNormalizer)
	visibility := clamp01(imageproc.EdgeDensity(gray, img.Width, img.Height, edgeLowThreshold, edgeHighThreshold) * edgeNormalizer)
	background := clamp01(imageproc.ColorStdDev(img) / colorStdNormalizer)

	scores := map[string]float64{
		"rule1": quality,
		"rule2": visibility,
		"rule3": background,
	}

	eval := &Evaluation{Suggestions: []string{}}
	total := 0.0
	for _, def := range defsFor(ruleset) {
		score := scores[def.ID]
		status := StatusFail
		if score > def.Threshold {
			status = StatusPass
		}
		confidence := round2(score * 100)
		eval.Results = append(eval.Results, Result{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Status:      status,
			Confidence:  confidence,
		})
		total += confidence

		if score < def.Threshold {
			if hint, ok := heuristicSuggestions[def.ID]; ok {
				eval.Suggestions = append(eval.Suggestions, hint)
			}
		}
	}
	eval.Overall = round2(total / float64(len(eval.Results)))
	return eval
}

// defsFor returns the three heuristic rule definitions in fixed order,
// taking thresholds from the live rule set and falling back to the
// defaults for any id missing from it.
func defsFor(ruleset []*Rule) []*Rule {
	byID := make(map[string]*Rule, len(ruleset))
	for _, r := range ruleset {
		byID[r.ID] = r
	}
	defs := DefaultRules()
	for i, def := range defs {
		if live, ok := byID[def.ID]; ok {
			defs[i] = live
		}
	}
	return defs
}

func clamp01(v float64) float64 {
	return math.Min(1.0, v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
