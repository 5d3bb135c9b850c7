package usecase

import "os"

// HealthStatus is the detailed readiness snapshot served by /health.
type HealthStatus struct {
	OpenAIStatus string
	RulesLoaded  int
	ImagesDir    bool
	TrainingDir  bool
}

// Health reports whether the external vision capability is configured
// and the storage directories exist.
func (uc *AnalysisUseCase) Health() HealthStatus {
	status := HealthStatus{
		OpenAIStatus: "not_configured",
		RulesLoaded:  uc.rules.Count(),
		ImagesDir:    dirExists(uc.imagesDir),
		TrainingDir:  dirExists(uc.trainingDir),
	}
	if uc.vision != nil && uc.vision.Configured() {
		status.OpenAIStatus = "available"
	}
	return status
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
