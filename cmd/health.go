package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meysamhadeli/docai/constants/lipgloss"
)

// healthCmd checks whether the document generation backend is reachable.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the document generation backend is reachable",
	Long: `Pings the configured document generation backend's health endpoint and
reports whether it is ready to serve generation requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealth(cmd)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command) error {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return fmt.Errorf("failed to initialize dependencies")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	baseURL := rootDependencies.Config.DocGenBackendConfig.BaseURL
	if err := rootDependencies.DocGenProvider.Health(ctx); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Backend %s is not healthy: %v", baseURL, err)))
		return err
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ Backend %s is healthy.", baseURL)))
	return nil
}
