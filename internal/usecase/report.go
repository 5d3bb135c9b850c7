package usecase

import (
	"math"

	"github.com/example/photo-inspect/internal/rules"
)

// ReportFormat is the fixed format label attached to report metadata.
const ReportFormat = "JPEG"

// Dimensions describes the decoded image size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata carries per-image bookkeeping for a report.
type Metadata struct {
	ImageSize  int        `json:"imageSize"`
	Dimensions Dimensions `json:"dimensions"`
	Format     string     `json:"format"`
	ImageID    string     `json:"imageId"`
	Filename   string     `json:"filename,omitempty"`
}

// Report is the analysis outcome for one submitted image. Error is set
// only on per-item failures inside a batch; such reports carry no rules
// and a zero score.
type Report struct {
	Rules        []rules.Result `json:"rules"`
	OverallScore float64        `json:"overallScore"`
	Suggestions  []string       `json:"suggestions"`
	Metadata     Metadata       `json:"metadata"`
	Error        string         `json:"error,omitempty"`
}

func errorReport(err error, filename string) *Report {
	return &Report{
		Rules:        []rules.Result{},
		OverallScore: 0,
		Suggestions:  []string{},
		Metadata:     Metadata{Filename: filename},
		Error:        err.Error(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
