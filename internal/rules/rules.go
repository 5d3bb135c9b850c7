package rules

// Evaluation kinds for a rule.
const (
	KindHeuristic = "heuristic"
	KindVision    = "vision"
	KindStub      = "stub"
)

// Result statuses.
const (
	StatusPass         = "pass"
	StatusFail         = "fail"
	StatusManualReview = "manual_review"
	StatusUnknown      = "unknown"
)

// Rule is a named check. Threshold is the only mutable field; it drifts
// in response to training feedback.
type Rule struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
	Category    string  `json:"category,omitempty"`
	Kind        string  `json:"kind,omitempty"`
}

// Result is the outcome of evaluating one rule against one image.
type Result struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	Details     string  `json:"details,omitempty"`
}

// DefaultRules returns the built-in heuristic rule set used to seed a
// fresh rules file.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			ID:          "rule1",
			Name:        "Image Quality",
			Description: "Check if the image is clear and well-lit",
			Threshold:   0.7,
			Category:    "Photo Quality",
			Kind:        KindHeuristic,
		},
		{
			ID:          "rule2",
			Name:        "Vehicle Visibility",
			Description: "Ensure the entire vehicle is visible in the frame",
			Threshold:   0.8,
			Category:    "Framing",
			Kind:        KindHeuristic,
		},
		{
			ID:          "rule3",
			Name:        "Background Clarity",
			Description: "Check if the background is clear and not cluttered",
			Threshold:   0.6,
			Category:    "Background",
			Kind:        KindHeuristic,
		},
	}
}
