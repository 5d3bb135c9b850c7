package rules

import (
	"context"

	"github.com/example/photo-inspect/internal/imageproc"
)

// overlaysRule is a placeholder until OCR-based overlay detection is
// available; it currently reports a canned pass.
type overlaysRule struct{}

func (r *overlaysRule) Definition() Rule {
	return Rule{
		ID:          "no_overlays",
		Name:        "No Overlays or Badges",
		Description: "No dealer overlays, badges, or phone numbers in the photo.",
		Category:    "Photo Quality",
		Kind:        KindStub,
	}
}

func (r *overlaysRule) Check(ctx context.Context, img *imageproc.Image, imageBytes []byte) Result {
	def := r.Definition()
	return Result{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Status:      StatusPass,
		Confidence:  99,
		Details:     "No overlays detected",
	}
}
