package project_analyzer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// languageByExtension maps file extensions to the language names reported in
// the project summary.
var languageByExtension = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".cs":    "C#",
	".rs":    "Rust",
	".rb":    "Ruby",
	".php":   "PHP",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".kt":    "Kotlin",
	".swift": "Swift",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "CSS",
	".sh":    "Shell",
	".sql":   "SQL",
}

func detectLanguage(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}

// nodeFrameworks maps package.json dependency names to framework labels.
var nodeFrameworks = map[string]string{
	"react":         "React",
	"next":          "Next.js",
	"vue":           "Vue.js",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"express":       "Express",
	"fastify":       "Fastify",
	"electron":      "Electron",
}

// goFrameworks maps go.mod module prefixes to framework labels.
var goFrameworks = map[string]string{
	"github.com/gin-gonic/gin":  "Gin",
	"github.com/labstack/echo":  "Echo",
	"github.com/gofiber/fiber":  "Fiber",
	"github.com/spf13/cobra":    "Cobra",
	"google.golang.org/grpc":    "gRPC",
}

// pythonFrameworks maps requirements.txt package names to framework labels.
var pythonFrameworks = map[string]string{
	"django":  "Django",
	"flask":   "Flask",
	"fastapi": "FastAPI",
	"pytest":  "pytest",
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// detectStack inspects well-known marker files under rootDir and returns the
// framework labels plus the dependency and script maps for the summary.
func detectStack(rootDir string) (frameworks []string, dependencies map[string]string, scripts map[string]string) {
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			frameworks = append(frameworks, name)
		}
	}

	if content, err := os.ReadFile(filepath.Join(rootDir, "package.json")); err == nil {
		add("Node.js")
		var pkg packageJSON
		if json.Unmarshal(content, &pkg) == nil {
			dependencies = map[string]string{}
			for name, version := range pkg.Dependencies {
				dependencies[name] = version
				if label, ok := nodeFrameworks[name]; ok {
					add(label)
				}
			}
			for name := range pkg.DevDependencies {
				if label, ok := nodeFrameworks[name]; ok {
					add(label)
				}
			}
			if len(pkg.Scripts) > 0 {
				scripts = pkg.Scripts
			}
		}
	}

	if content, err := os.ReadFile(filepath.Join(rootDir, "go.mod")); err == nil {
		add("Go Modules")
		for prefix, label := range goFrameworks {
			if bytes.Contains(content, []byte(prefix)) {
				add(label)
			}
		}
	}

	if file, err := os.Open(filepath.Join(rootDir, "requirements.txt")); err == nil {
		if dependencies == nil {
			dependencies = map[string]string{}
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			name, version := splitRequirement(line)
			dependencies[name] = version
			if label, ok := pythonFrameworks[strings.ToLower(name)]; ok {
				add(label)
			}
		}
		file.Close()
	}

	if _, err := os.Stat(filepath.Join(rootDir, "Cargo.toml")); err == nil {
		add("Cargo")
	}
	if _, err := os.Stat(filepath.Join(rootDir, "pom.xml")); err == nil {
		add("Maven")
	}
	if _, err := os.Stat(filepath.Join(rootDir, "Dockerfile")); err == nil {
		add("Docker")
	}

	return frameworks, dependencies, scripts
}

// splitRequirement splits a requirements.txt line like "flask==3.0.0" into
// name and version.
func splitRequirement(line string) (string, string) {
	for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<"} {
		if idx := strings.Index(line, sep); idx > 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return line, ""
}
