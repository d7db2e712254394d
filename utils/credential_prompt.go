package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/meysamhadeli/docai/constants/lipgloss"
)

// CredentialPromptWithContext reads an API key without echoing it to the
// terminal. An empty answer means the user declined. When stdin is not a
// terminal (tests, pipes) it falls back to a plain read.
func CredentialPromptWithContext(ctx context.Context, prompt string) (string, error) {
	resultChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		fmt.Print(lipgloss.Yellow.Render(prompt + " "))

		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			secret, err := term.ReadPassword(fd)
			fmt.Println()
			if err != nil {
				errChan <- fmt.Errorf("error reading credential: %w", err)
				return
			}
			resultChan <- strings.TrimSpace(string(secret))
			return
		}

		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			resultChan <- ""
			return
		}
		resultChan <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case secret := <-resultChan:
		return secret, nil
	}
}
