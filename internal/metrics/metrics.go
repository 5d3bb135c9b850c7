package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analyses counts image analyses by mode (single, batch_item) and
// outcome (ok, invalid_image, error).
var Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photo_inspect_analyses_total",
	Help: "Image analyses processed, by mode and outcome.",
}, []string{"mode", "outcome"})

// Feedback counts training feedback submissions by outcome
// (ok, unknown_rule, error).
var Feedback = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photo_inspect_feedback_total",
	Help: "Training feedback submissions, by outcome.",
}, []string{"outcome"})

// VisionRequests counts calls to the external vision capability by
// path (single, multi) and outcome (ok, error).
var VisionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photo_inspect_vision_requests_total",
	Help: "External vision API calls, by path and outcome.",
}, []string{"path", "outcome"})
