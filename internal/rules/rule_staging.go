package rules

import (
	"context"
	"fmt"

	"github.com/example/photo-inspect/internal/imageproc"
)

const stagingPassScore = 70

const stagingPrompt = `Analyze this vehicle photo for proper staging according to these criteria:

1. LIGHTING: Is the vehicle well-lit with even, natural lighting? No harsh shadows or dark areas?
2. BACKGROUND: Is the background neutral and uncluttered? No distracting elements?
3. ENVIRONMENT: Is the area clean and professional-looking?
4. POSITIONING: Is the vehicle positioned to show its best angles?

Provide a score from 0-100 and explain any issues found.
Focus on staging quality, not the vehicle's condition.`

// stagingRule delegates staging assessment to the external vision
// capability and maps its free-text answer onto a pass/fail score.
type stagingRule struct {
	vision VisionClient
}

func (r *stagingRule) Definition() Rule {
	return Rule{
		ID:          "staging",
		Name:        "Stage Your Vehicles",
		Description: "Vehicles should be staged in well-lit, neutral, uncluttered areas",
		Category:    "Staging",
		Kind:        KindVision,
	}
}

func (r *stagingRule) Check(ctx context.Context, img *imageproc.Image, imageBytes []byte) Result {
	def := r.Definition()
	base := Result{ID: def.ID, Name: def.Name, Description: def.Description}

	if len(imageBytes) == 0 {
		base.Status = StatusManualReview
		base.Confidence = 50
		base.Details = "No image bytes provided"
		return base
	}

	if r.vision == nil || !r.vision.Configured() {
		base.Status = StatusManualReview
		base.Confidence = DefaultVisionScore
		base.Details = "Basic staging analysis completed (vision models not available)"
		return base
	}

	analysis := r.vision.Analyze(ctx, imageBytes, stagingPrompt)
	score := ExtractScore(analysis)

	base.Status = StatusFail
	if score >= stagingPassScore {
		base.Status = StatusPass
	}
	base.Confidence = float64(score)
	base.Details = fmt.Sprintf("Staging analysis: %s", analysis)
	return base
}
