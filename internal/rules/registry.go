package rules

import (
	"context"

	"github.com/example/photo-inspect/internal/imageproc"
)

// VisionClient is the external vision capability needed by
// vision-backed rules: image bytes plus a prompt in, analysis text out.
// Failures degrade to a descriptive string, never an error.
type VisionClient interface {
	Configured() bool
	Analyze(ctx context.Context, imageBytes []byte, prompt string) string
}

// CheckRule is one entry of the closed check set. Implementations are
// either local stubs or vision-backed; all are stateless.
type CheckRule interface {
	Definition() Rule
	Check(ctx context.Context, img *imageproc.Image, imageBytes []byte) Result
}

// NewRegistry builds the fixed, ordered check set.
func NewRegistry(vision VisionClient) []CheckRule {
	return []CheckRule{
		&backgroundClutterRule{},
		&overlaysRule{},
		&stagingRule{vision: vision},
	}
}
