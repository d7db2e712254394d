package contracts

import "github.com/meysamhadeli/docai/project_analyzer/models"

// IProjectAnalyzer produces a bounded, structured summary of a project root.
// Analysis is pure and synchronous: no network access, no mutation of the
// project (the scan cache lives under the project's .docai directory).
type IProjectAnalyzer interface {
	AnalyzeProject(rootDir string) (*models.ProjectSummary, error)
	ClearCache() error
	GetCacheStats() (map[string]interface{}, error)
}

// ILOCEstimator estimates a project's lines of code from the scanned file
// set. Estimators are pluggable; accuracy contracts differ per
// implementation.
type ILOCEstimator interface {
	Name() string
	Estimate(files []models.FileInfo) int
}
