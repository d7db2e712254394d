package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/docai/constants/lipgloss"
)

// InputPromptWithContext prompts the user for a line of input with context
// cancellation support.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		fmt.Print(lipgloss.BlueSky.Render("> "))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				errChan <- io.EOF
			} else {
				errChan <- fmt.Errorf("error reading input: %w", err)
			}
			return
		}

		inputChan <- strings.TrimSpace(userInput)
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}
