package project_analyzer

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/meysamhadeli/docai/project_analyzer/contracts"
	"github.com/meysamhadeli/docai/project_analyzer/models"
)

const (
	// maxStructureEntries bounds the structure listing sent to the backend.
	maxStructureEntries = 80

	// maxFileReadSize caps content reads; larger files still count toward
	// FileCount but are not read for line or symbol analysis.
	maxFileReadSize = 100 * 1024
)

// defaultIgnored are path components always skipped during a scan.
var defaultIgnored = map[string]bool{
	".git":         true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".docai":       true,
	".cache":       true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"out":          true,
	"bin":          true,
	"obj":          true,
	"target":       true,
	"__pycache__":  true,
}

// ProjectAnalyzer is the default scanner implementation: a pure, synchronous
// walk over the project tree producing a bounded ProjectSummary.
type ProjectAnalyzer struct {
	estimator contracts.ILOCEstimator
	cache     *ScanCache
}

// NewProjectAnalyzer initializes a new ProjectAnalyzer. A nil cache disables
// caching rather than failing the scan.
func NewProjectAnalyzer(estimator contracts.ILOCEstimator, cache *ScanCache) contracts.IProjectAnalyzer {
	return &ProjectAnalyzer{
		estimator: estimator,
		cache:     cache,
	}
}

func (analyzer *ProjectAnalyzer) AnalyzeProject(rootDir string) (*models.ProjectSummary, error) {
	gitIgnore := loadGitignore(rootDir)

	var files []models.FileInfo
	var structure []string
	languageFiles := map[string]int{}
	declarations := 0

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relativePath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relativePath = filepath.ToSlash(relativePath)
		if relativePath == "." {
			return nil
		}

		if isDefaultIgnored(relativePath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(relativePath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if len(structure) < maxStructureEntries {
				structure = append(structure, relativePath+"/")
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", relativePath, err)
		}

		if len(structure) < maxStructureEntries {
			structure = append(structure, relativePath)
		}

		file := models.FileInfo{
			RelativePath: relativePath,
			AbsolutePath: path,
			Size:         info.Size(),
			Language:     detectLanguage(relativePath),
		}

		if info.Size() <= maxFileReadSize {
			entry, decls := analyzer.scanFile(path, info, file.Language)
			file.Lines = entry.Lines
			declarations += decls
		}

		if file.Language != "" {
			languageFiles[file.Language]++
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	languages := make([]string, 0, len(languageFiles))
	for language := range languageFiles {
		languages = append(languages, language)
	}
	// Dominant language first, alphabetical within equal counts.
	sort.Slice(languages, func(i, j int) bool {
		if languageFiles[languages[i]] != languageFiles[languages[j]] {
			return languageFiles[languages[i]] > languageFiles[languages[j]]
		}
		return languages[i] < languages[j]
	})

	frameworks, dependencies, scripts := detectStack(rootDir)

	return &models.ProjectSummary{
		Name:         filepath.Base(rootDir),
		Structure:    structure,
		Languages:    languages,
		Frameworks:   frameworks,
		FileCount:    len(files),
		EstimatedLOC: analyzer.estimator.Estimate(files),
		Description:  buildDescription(languages, languageFiles, declarations),
		Dependencies: dependencies,
		Scripts:      scripts,
	}, nil
}

// scanFile reads one file to gather its line count and top-level declaration
// count, consulting the scan cache first. Read failures degrade to an empty
// entry; the scan itself keeps going.
func (analyzer *ProjectAnalyzer) scanFile(path string, info os.FileInfo, language string) (fileScanEntry, int) {
	if analyzer.cache != nil {
		if cached, found := analyzer.cache.Get(path, info); found {
			return *cached, cached.Decls
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fileScanEntry{}, 0
	}

	entry := fileScanEntry{
		Lines:    countLines(content),
		Decls:    countTopLevelDeclarations(language, content),
		Language: language,
	}

	if analyzer.cache != nil {
		_ = analyzer.cache.Set(path, info, entry)
	}

	return entry, entry.Decls
}

func (analyzer *ProjectAnalyzer) ClearCache() error {
	if analyzer.cache == nil {
		return nil
	}
	return analyzer.cache.Clear()
}

func (analyzer *ProjectAnalyzer) GetCacheStats() (map[string]interface{}, error) {
	if analyzer.cache == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}
	stats, err := analyzer.cache.Stats()
	if err != nil {
		return nil, err
	}
	stats["cache_enabled"] = true
	return stats, nil
}

func isDefaultIgnored(relativePath string) bool {
	for _, part := range strings.Split(relativePath, "/") {
		if defaultIgnored[strings.ToLower(part)] {
			return true
		}
	}
	return false
}

// loadGitignore compiles the project's .gitignore when present. A missing or
// unreadable file simply disables gitignore filtering.
func loadGitignore(rootDir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lines := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		lines++
	}
	return lines
}

// buildDescription summarizes what the scan saw in one free-text sentence.
func buildDescription(languages []string, languageFiles map[string]int, declarations int) string {
	if len(languages) == 0 {
		return ""
	}

	parts := make([]string, 0, 3)
	primary := languages[0]
	parts = append(parts, fmt.Sprintf("%s project (%d %s files)", primary, languageFiles[primary], primary))
	if len(languages) > 1 {
		parts = append(parts, fmt.Sprintf("also uses %s", strings.Join(languages[1:min(len(languages), 4)], ", ")))
	}
	if declarations > 0 {
		parts = append(parts, fmt.Sprintf("%d top-level declarations detected", declarations))
	}
	return strings.Join(parts, "; ")
}
