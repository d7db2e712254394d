package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meysamhadeli/docai/config"
	"github.com/meysamhadeli/docai/constants/lipgloss"
	"github.com/meysamhadeli/docai/credentials"
	credential_contracts "github.com/meysamhadeli/docai/credentials/contracts"
	"github.com/meysamhadeli/docai/project_analyzer"
	analyzer_contracts "github.com/meysamhadeli/docai/project_analyzer/contracts"
	"github.com/meysamhadeli/docai/providers"
	provider_contracts "github.com/meysamhadeli/docai/providers/contracts"
	"github.com/meysamhadeli/docai/snapshot"
	snapshot_contracts "github.com/meysamhadeli/docai/snapshot/contracts"
	"github.com/meysamhadeli/docai/stats"
	stats_contracts "github.com/meysamhadeli/docai/stats/contracts"
	"github.com/meysamhadeli/docai/utils"
	"github.com/meysamhadeli/docai/workflow"
	workflow_contracts "github.com/meysamhadeli/docai/workflow/contracts"
)

// RootDependencies holds the wired collaborators shared by all subcommands.
type RootDependencies struct {
	Config          *config.Config
	Cwd             string
	Logger          *utils.Logger
	Analyzer        analyzer_contracts.IProjectAnalyzer
	SnapshotStore   snapshot_contracts.ISnapshotStore
	DocGenProvider  provider_contracts.IDocGenProvider
	CredentialStore credential_contracts.ICredentialStore
	Stats           stats_contracts.IGenerationStats
	Session         workflow_contracts.IWorkflowSession
}

// RootCmd: docai
var rootCmd = &cobra.Command{
	Use:   "docai",
	Short: "docai keeps your project documentation generated, previewed and versioned.",
	Long: `docai analyzes the current project, asks a document generation backend for an
up-to-date README, and lets you preview the result before anything on disk
changes. Every write to the document is preceded by a snapshot, so any
generation can be undone.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.AddCommand(docCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

// handleRootCommand wires the full dependency graph for one project root.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	rootDependencies := &RootDependencies{}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}
	rootDependencies.Cwd = cwd

	rootDependencies.Config = config.LoadConfigWithCache(cmd.Root(), cwd)
	rootDependencies.Logger = utils.GetLogger(cwd)

	var scanCache *project_analyzer.ScanCache
	if rootDependencies.Config.EnableCache {
		scanCache, err = project_analyzer.NewScanCache("")
		if err != nil {
			// A broken cache directory degrades to uncached scans.
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: scan cache unavailable: %v", err)))
			scanCache = nil
		}
	}

	estimator := project_analyzer.NewLOCEstimator(rootDependencies.Config.LOCEstimator, rootDependencies.Config.FixedLOCPerFile)
	rootDependencies.Analyzer = project_analyzer.NewProjectAnalyzer(estimator, scanCache)

	rootDependencies.SnapshotStore = snapshot.NewSnapshotStore(rootDependencies.Config.TargetFile)
	rootDependencies.DocGenProvider = providers.DocGenProviderFactory(rootDependencies.Config.DocGenBackendConfig)

	rootDependencies.CredentialStore, err = credentials.NewFileStore("")
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error opening credential store: %v", err)))
		return nil
	}

	rootDependencies.Stats = stats.NewGenerationStats()

	reader := bufio.NewReader(os.Stdin)
	session, err := workflow.NewSession(workflow.SessionConfig{
		RootDir:       cwd,
		TargetFile:    rootDependencies.Config.TargetFile,
		CredentialKey: "docai.api_key",
		Analyzer:      rootDependencies.Analyzer,
		Snapshots:     rootDependencies.SnapshotStore,
		Provider:      rootDependencies.DocGenProvider,
		Credentials:   rootDependencies.CredentialStore,
		Confirm: func(prompt string) (bool, error) {
			return utils.ConfirmPrompt(prompt, reader)
		},
		PromptCredential: func(ctx context.Context) (string, error) {
			return utils.CredentialPromptWithContext(ctx, "Enter the API key for the document generation backend (empty to cancel):")
		},
		Stats:  rootDependencies.Stats,
		Logger: rootDependencies.Logger,
	})
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error creating workflow session: %v", err)))
		return nil
	}
	rootDependencies.Session = session

	return rootDependencies
}
