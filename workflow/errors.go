package workflow

// PreconditionError reports a workflow action invoked in a state that does
// not allow it. Nothing changes; the user may correct the sequence and
// retry.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// NoWorkspaceError reports a session constructed without an open project
// root.
type NoWorkspaceError struct{}

func (e *NoWorkspaceError) Error() string {
	return "no project root is open"
}

var (
	// ErrWorkflowBusy rejects a second generate/apply/restore while one is
	// already in flight for the same project root.
	ErrWorkflowBusy = &PreconditionError{Message: "another workflow action is already running for this project"}

	// ErrNoPendingArtifact rejects preview/apply before a successful
	// generate.
	ErrNoPendingArtifact = &PreconditionError{Message: "no generated document is pending; run generate first"}

	// ErrCredentialDeclined aborts a generate whose credential prompt was
	// cancelled. No side effects have happened at that point.
	ErrCredentialDeclined = &PreconditionError{Message: "credential entry was cancelled"}
)
