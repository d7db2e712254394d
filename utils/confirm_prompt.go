package utils

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/meysamhadeli/docai/constants/lipgloss"
)

// ConfirmPrompt asks a y/N question and returns the user's decision. The
// default on an empty answer is no, so destructive steps need an explicit
// yes.
func ConfirmPrompt(prompt string, reader *bufio.Reader) (bool, error) {
	fmt.Printf("%s %s ", lipgloss.Yellow.Render(prompt), "[y/N]:")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("error reading confirmation: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
