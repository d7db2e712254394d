package models

// ProjectSummary is the structured result of scanning a project root. It is
// immutable once produced and is the single input to one generation attempt.
// The JSON field names follow the backend's wire contract.
type ProjectSummary struct {
	Name         string            `json:"name"`
	Structure    []string          `json:"structure"`
	Languages    []string          `json:"languages"`
	Frameworks   []string          `json:"frameworks"`
	FileCount    int               `json:"fileCount"`
	EstimatedLOC int               `json:"estimatedLOC"`
	Description  string            `json:"description,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Scripts      map[string]string `json:"scripts,omitempty"`
}

// FileInfo describes one scanned file; estimators consume these.
type FileInfo struct {
	RelativePath string
	AbsolutePath string
	Size         int64
	Lines        int
	Language     string
}
