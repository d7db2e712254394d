package project_analyzer

import (
	"github.com/meysamhadeli/docai/project_analyzer/contracts"
	"github.com/meysamhadeli/docai/project_analyzer/models"
)

const defaultLOCPerFile = 30

// LineCountEstimator sums the real line counts gathered during the scan.
type LineCountEstimator struct{}

func (e *LineCountEstimator) Name() string { return "lines" }

func (e *LineCountEstimator) Estimate(files []models.FileInfo) int {
	total := 0
	for _, f := range files {
		total += f.Lines
	}
	return total
}

// FixedRateEstimator multiplies the file count by a constant. It is the
// crude heuristic the first version of this tool shipped with, kept as an
// option for projects too large to read through.
type FixedRateEstimator struct {
	PerFile int
}

func (e *FixedRateEstimator) Name() string { return "fixed" }

func (e *FixedRateEstimator) Estimate(files []models.FileInfo) int {
	perFile := e.PerFile
	if perFile <= 0 {
		perFile = defaultLOCPerFile
	}
	return perFile * len(files)
}

// NewLOCEstimator selects an estimator by configured name, falling back to
// line counting for anything unrecognized.
func NewLOCEstimator(name string, fixedPerFile int) contracts.ILOCEstimator {
	switch name {
	case "fixed":
		return &FixedRateEstimator{PerFile: fixedPerFile}
	default:
		return &LineCountEstimator{}
	}
}
