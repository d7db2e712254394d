package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/meysamhadeli/docai/constants/lipgloss"
	"github.com/meysamhadeli/docai/utils"
	"github.com/meysamhadeli/docai/workflow"
	workflow_models "github.com/meysamhadeli/docai/workflow/models"
)

// DocCmd: docai doc
var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Run the documentation workflow for the current project within a session.",
	Long: `The 'doc' subcommand opens a session over the current project. From it you can
generate a fresh document from the backend, preview and diff the result, apply
it to disk, and restore any earlier snapshot. A generated document stays
pending in the session until you apply or regenerate it, and the target file
is snapshotted before every write.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		handleDocCommand(rootDependencies)
	},
}

func handleDocCommand(rootDependencies *RootDependencies) {

	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	go utils.GracefulShutdown(ctx, func() {
		rootDependencies.Stats.ClearStats()
	})

	reader := bufio.NewReader(os.Stdin)

	docOptionsBox := lipgloss.BoxStyle.Render("/help  Help for doc subcommand")
	fmt.Println(docOptionsBox)

	// A dead backend is worth knowing about before the first generate.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rootDependencies.DocGenProvider.Health(pingCtx); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Backend %s is not reachable yet: %v", rootDependencies.Config.DocGenBackendConfig.BaseURL, err)))
		fmt.Println(lipgloss.Yellow.Render("Start the document generation backend, then run /generate."))
	}
	pingCancel()

	for {
		select {
		case <-ctx.Done():
			return

		default:
			// Get user input with context cancellation support
			userInput, err := utils.InputPromptWithContext(ctx, reader)

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
					return
				}
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				continue
			}

			if userInput == "" {
				fmt.Print("\r")
				continue
			}

			handled, exit := findDocSubCommand(ctx, userInput, rootDependencies, spinner)
			if exit {
				return
			}
			if !handled {
				fmt.Println(lipgloss.Yellow.Render("Unknown command. Type /help for the list of commands."))
			}
		}
	}
}

func findDocSubCommand(ctx context.Context, command string, rootDependencies *RootDependencies, spinner *pterm.SpinnerPrinter) (bool, bool) {
	switch {
	case command == "/help":
		helps := "/generate  Analyze the project and generate a new document\n" +
			"/preview  Render the pending document\n" +
			"/diff  Show what applying the pending document would change\n" +
			"/apply  Write the pending document to " + rootDependencies.Config.TargetFile + "\n" +
			"/history  List snapshots, newest first\n" +
			"/restore <id>  Revert " + rootDependencies.Config.TargetFile + " to a snapshot\n" +
			"/state  Show the current workflow state\n" +
			"/stats  Session generation statistics\n" +
			"/clear-stats  Clear session statistics\n" +
			"/clear  Clear screen\n" +
			"/exit  Exit from docai"
		styledHelps := lipgloss.BoxStyle.Render(helps)
		fmt.Println(styledHelps)
		return true, false

	case command == "/clear":
		fmt.Print("\033[2J\033[H")
		return true, false

	case command == "/exit":
		return true, true

	case command == "/generate":
		handleGenerate(ctx, rootDependencies, spinner)
		return true, false

	case command == "/preview":
		handlePreview(ctx, rootDependencies)
		return true, false

	case command == "/diff":
		handleDiff(rootDependencies)
		return true, false

	case command == "/apply":
		handleApply(ctx, rootDependencies)
		return true, false

	case command == "/history":
		handleHistory(rootDependencies)
		return true, false

	case strings.HasPrefix(command, "/restore"):
		handleRestore(ctx, command, rootDependencies)
		return true, false

	case command == "/state":
		fmt.Println(lipgloss.Info.Render(fmt.Sprintf("Workflow state: %s", rootDependencies.Session.State())))
		return true, false

	case command == "/stats":
		rootDependencies.Stats.DisplayStats(rootDependencies.Config.DocGenBackendConfig.BaseURL)
		return true, false

	case command == "/clear-stats":
		rootDependencies.Stats.ClearStats()
		fmt.Println(lipgloss.Green.Render("Session statistics cleared."))
		return true, false

	default:
		return false, false
	}
}

func handleGenerate(ctx context.Context, rootDependencies *RootDependencies, spinner *pterm.SpinnerPrinter) {
	spinnerGenerate, _ := spinner.Start("Analyzing project and generating document...")

	err := rootDependencies.Session.Generate(ctx)

	spinnerGenerate.Stop()
	fmt.Print("\r")

	if err != nil {
		if errors.Is(err, workflow.ErrCredentialDeclined) {
			fmt.Println(lipgloss.Yellow.Render("Generation cancelled: no API key provided."))
			return
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	if rootDependencies.Session.State() == workflow_models.StatePreviewable {
		fmt.Println(lipgloss.Green.Render("✔️ Document generated. Use /preview to inspect it, /apply to write it."))
	}
}

func handlePreview(ctx context.Context, rootDependencies *RootDependencies) {
	content, err := rootDependencies.Session.Preview()
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render("Nothing to preview. Run /generate first."))
		return
	}

	if err := utils.RenderAndPrintMarkdownWithContext(ctx, content, rootDependencies.Config.Theme); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error rendering preview: %v", err)))
		}
	}
}

func handleDiff(rootDependencies *RootDependencies) {
	proposed, err := rootDependencies.Session.Preview()
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render("Nothing to diff. Run /generate first."))
		return
	}

	targetPath := filepath.Join(rootDependencies.Cwd, rootDependencies.Config.TargetFile)
	current, err := os.ReadFile(targetPath)
	if err != nil && !os.IsNotExist(err) {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading %s: %v", rootDependencies.Config.TargetFile, err)))
		return
	}

	fmt.Println(utils.RenderDiff(string(current), proposed))
}

func handleApply(ctx context.Context, rootDependencies *RootDependencies) {
	applied, err := rootDependencies.Session.Apply(ctx)
	if err != nil {
		if errors.Is(err, workflow.ErrNoPendingArtifact) {
			fmt.Println(lipgloss.Yellow.Render("Nothing to apply. Run /generate first."))
			return
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	if applied {
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ %s updated.", rootDependencies.Config.TargetFile)))
	} else {
		fmt.Println(lipgloss.Red.Render("❌ Apply rejected. The document stays pending."))
	}
}

func handleHistory(rootDependencies *RootDependencies) {
	history, err := rootDependencies.Session.History()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if len(history) == 0 {
		fmt.Println(lipgloss.Info.Render("No snapshots yet."))
		return
	}

	var builder strings.Builder
	for _, snap := range history {
		builder.WriteString(fmt.Sprintf("%s  %s  %d bytes\n", snap.ID, snap.CreatedAt.Local().Format("2006-01-02 15:04:05"), snap.Size))
	}
	fmt.Println(lipgloss.BoxStyle.Render(strings.TrimRight(builder.String(), "\n")))
}

func handleRestore(ctx context.Context, command string, rootDependencies *RootDependencies) {
	parts := strings.Fields(command)
	if len(parts) != 2 {
		fmt.Println(lipgloss.Yellow.Render("Usage: /restore <snapshot-id> (see /history)"))
		return
	}

	restored, err := rootDependencies.Session.Restore(ctx, parts[1])
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	if restored {
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ %s restored from snapshot %s.", rootDependencies.Config.TargetFile, parts[1])))
	} else {
		fmt.Println(lipgloss.Yellow.Render("Restore skipped."))
	}
}
