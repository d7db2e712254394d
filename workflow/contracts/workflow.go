package contracts

import (
	"context"

	snapshot_models "github.com/meysamhadeli/docai/snapshot/models"
	"github.com/meysamhadeli/docai/workflow/models"
)

// ConfirmFunc asks the user to approve a destructive step. Any host
// environment can supply it: a modal, a CLI y/n prompt, or a scripted test
// double.
type ConfirmFunc func(prompt string) (bool, error)

// CredentialPromptFunc solicits the API credential from the user when the
// store has none. Returning an empty value means the user declined.
type CredentialPromptFunc func(ctx context.Context) (string, error)

// ILogger is the minimal logging surface the workflow needs.
type ILogger interface {
	Logf(format string, v ...interface{})
}

// IWorkflowSession drives the generate/preview/apply/restore workflow for a
// single project root. Generate, Apply and Restore are mutually exclusive
// per session; a second one while another is in flight is rejected.
type IWorkflowSession interface {
	// Generate runs analysis, snapshots the current target file, and calls
	// the remote backend. On success the result is held as the pending
	// artifact; the target file is untouched.
	Generate(ctx context.Context) error

	// Preview returns the pending artifact's content without consuming it.
	Preview() (string, error)

	// Apply writes the pending artifact to the target file after an explicit
	// confirmation. It reports false when the user declined. A write failure
	// keeps the pending artifact so apply can be retried.
	Apply(ctx context.Context) (applied bool, err error)

	// Restore puts the referenced snapshot's bytes back onto the target
	// file, after snapshotting the current state so the restore itself stays
	// undoable. It reports false when there is nothing to restore or the
	// user declined.
	Restore(ctx context.Context, snapshotID string) (restored bool, err error)

	// History lists the project's snapshots, newest first.
	History() ([]snapshot_models.Snapshot, error)

	State() models.State
}
