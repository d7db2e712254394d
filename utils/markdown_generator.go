package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderAndPrintMarkdownWithContext prints markdown content to the terminal
// with syntax highlighting, checking for cancellation between lines so a
// long preview can be interrupted.
func RenderAndPrintMarkdownWithContext(ctx context.Context, content string, theme string) error {
	lines := strings.Split(content, "\n")

	insideCodeBlock := false
	codeLanguage := ""

	for i, line := range lines {
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				fmt.Println("\npreview interrupted")
				return ctx.Err()
			default:
			}
		}

		if strings.HasPrefix(line, "```") {
			if !insideCodeBlock {
				codeLanguage = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			} else {
				codeLanguage = ""
			}
			insideCodeBlock = !insideCodeBlock
			fmt.Println(line)
			continue
		}

		language := "markdown"
		if insideCodeBlock && codeLanguage != "" {
			language = codeLanguage
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", language, "terminal256", theme); err != nil {
			// Highlighting is cosmetic; fall back to plain output.
			fmt.Println(line)
			continue
		}
		fmt.Print(buf.String())
	}

	return nil
}
