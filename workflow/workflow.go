package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	credential_contracts "github.com/meysamhadeli/docai/credentials/contracts"
	analyzer_contracts "github.com/meysamhadeli/docai/project_analyzer/contracts"
	provider_contracts "github.com/meysamhadeli/docai/providers/contracts"
	"github.com/meysamhadeli/docai/snapshot"
	snapshot_contracts "github.com/meysamhadeli/docai/snapshot/contracts"
	snapshot_models "github.com/meysamhadeli/docai/snapshot/models"
	stats_contracts "github.com/meysamhadeli/docai/stats/contracts"
	"github.com/meysamhadeli/docai/workflow/contracts"
	"github.com/meysamhadeli/docai/workflow/models"
)

// SessionConfig wires a workflow session to its collaborators. Analyzer,
// Snapshots, Provider, Credentials, Confirm and PromptCredential are
// required; Stats and Logger are optional.
type SessionConfig struct {
	RootDir       string
	TargetFile    string
	CredentialKey string

	Analyzer         analyzer_contracts.IProjectAnalyzer
	Snapshots        snapshot_contracts.ISnapshotStore
	Provider         provider_contracts.IDocGenProvider
	Credentials      credential_contracts.ICredentialStore
	Confirm          contracts.ConfirmFunc
	PromptCredential contracts.CredentialPromptFunc

	Stats  stats_contracts.IGenerationStats
	Logger contracts.ILogger
}

// Session owns the workflow state and the single pending artifact for one
// project root. Multiple sessions for different roots run independently.
type Session struct {
	cfg SessionConfig

	// opMu serializes generate/apply/restore; TryLock rejects overlap
	// instead of queueing so a stuck backend call cannot pile up actions.
	opMu sync.Mutex

	// stateMu guards state and pending, which Preview and State read while
	// an operation is in flight.
	stateMu sync.RWMutex
	state   models.State
	pending *models.PendingArtifact
}

// NewSession validates the configuration and returns a session in the Idle
// state.
func NewSession(cfg SessionConfig) (contracts.IWorkflowSession, error) {
	if cfg.RootDir == "" {
		return nil, &NoWorkspaceError{}
	}
	if cfg.TargetFile == "" {
		cfg.TargetFile = "README.md"
	}
	if cfg.CredentialKey == "" {
		cfg.CredentialKey = "docai.api_key"
	}
	if cfg.Analyzer == nil || cfg.Snapshots == nil || cfg.Provider == nil || cfg.Credentials == nil {
		return nil, fmt.Errorf("workflow session is missing a required collaborator")
	}
	if cfg.Confirm == nil || cfg.PromptCredential == nil {
		return nil, fmt.Errorf("workflow session is missing a confirmation or credential prompt")
	}

	return &Session{cfg: cfg, state: models.StateIdle}, nil
}

func (s *Session) State() models.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(state models.State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// restingState is where the session settles after an operation: Previewable
// while an artifact is pending, Idle otherwise.
func (s *Session) restingState() models.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.pending != nil {
		return models.StatePreviewable
	}
	return models.StateIdle
}

func (s *Session) begin() error {
	if !s.opMu.TryLock() {
		return ErrWorkflowBusy
	}
	return nil
}

func (s *Session) finish() {
	s.setState(s.restingState())
	s.opMu.Unlock()
}

func (s *Session) logf(format string, v ...interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Logf(format, v...)
	}
}

func (s *Session) recordFailure() {
	if s.cfg.Stats != nil {
		s.cfg.Stats.RecordFailure()
	}
}

// Generate runs the full pipeline: credential, analysis, snapshot, remote
// call. A snapshot attempt always precedes a generation attempt so an
// eventual apply can never overwrite an unprotected file.
func (s *Session) Generate(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	apiKey, err := s.acquireCredential(ctx)
	if err != nil {
		return err
	}

	s.setState(models.StateAnalyzing)
	summary, err := s.cfg.Analyzer.AnalyzeProject(s.cfg.RootDir)
	if err != nil {
		s.logf("generate aborted: analysis failed: %v", err)
		return fmt.Errorf("project analysis failed: %w", err)
	}

	s.setState(models.StateSnapshotPending)
	snap, err := s.cfg.Snapshots.Create(s.cfg.RootDir)
	if err != nil {
		s.logf("generate aborted: snapshot failed: %v", err)
		return err
	}
	if snap != nil {
		s.logf("snapshot %s created before generation", snap.ID)
	}

	s.setState(models.StateGenerating)
	start := time.Now()
	content, err := s.cfg.Provider.GenerateDocument(ctx, summary, apiKey)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The session was closed mid-call; abandon quietly.
			s.logf("generation cancelled by host")
			return nil
		}
		s.recordFailure()
		s.logf("generate aborted: remote call failed: %v", err)
		return err
	}

	if s.cfg.Stats != nil {
		s.cfg.Stats.RecordGeneration(len(content), time.Since(start))
	}

	s.stateMu.Lock()
	s.pending = &models.PendingArtifact{Content: content, GeneratedAt: time.Now()}
	s.stateMu.Unlock()

	s.logf("generation succeeded (%d bytes pending)", len(content))
	return nil
}

// acquireCredential reads the API key from the store, or solicits and
// persists it when absent. The value itself is never logged.
func (s *Session) acquireCredential(ctx context.Context) (string, error) {
	apiKey, ok, err := s.cfg.Credentials.Get(s.cfg.CredentialKey)
	if err != nil {
		return "", fmt.Errorf("failed to read credential store: %w", err)
	}
	if ok && apiKey != "" {
		return apiKey, nil
	}

	apiKey, err = s.cfg.PromptCredential(ctx)
	if err != nil {
		return "", err
	}
	if apiKey == "" {
		return "", ErrCredentialDeclined
	}

	if err := s.cfg.Credentials.Set(s.cfg.CredentialKey, apiKey); err != nil {
		// A credential that cannot be persisted still works for this call.
		s.logf("warning: failed to persist credential: %v", err)
	}
	return apiKey, nil
}

// Preview returns the pending content without consuming it. It is a pure
// read and may be repeated.
func (s *Session) Preview() (string, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if s.pending == nil {
		return "", ErrNoPendingArtifact
	}
	return s.pending.Content, nil
}

// Apply commits the pending artifact to the target file as a single
// whole-file write.
func (s *Session) Apply(ctx context.Context) (bool, error) {
	if err := s.begin(); err != nil {
		return false, err
	}
	defer s.finish()

	s.stateMu.RLock()
	pending := s.pending
	s.stateMu.RUnlock()
	if pending == nil {
		return false, ErrNoPendingArtifact
	}

	confirmed, err := s.cfg.Confirm(fmt.Sprintf("Apply the generated document? This will overwrite %s.", s.cfg.TargetFile))
	if err != nil {
		return false, err
	}
	if !confirmed {
		s.logf("apply declined by user")
		return false, nil
	}

	s.setState(models.StateApplying)
	targetPath := filepath.Join(s.cfg.RootDir, s.cfg.TargetFile)
	if err := snapshot.WriteFileAtomic(s.cfg.RootDir, targetPath, []byte(pending.Content)); err != nil {
		// The artifact stays pending so the user can fix the cause and
		// retry apply without regenerating.
		s.logf("apply failed: %v", err)
		return false, &snapshot.StorageError{Op: "apply", Path: targetPath, Err: err}
	}

	s.stateMu.Lock()
	s.pending = nil
	s.stateMu.Unlock()

	s.logf("applied generated document to %s", s.cfg.TargetFile)
	return true, nil
}

// Restore reverts the target file to a previous snapshot. The current state
// is snapshotted first so every restore is itself undoable.
func (s *Session) Restore(ctx context.Context, snapshotID string) (bool, error) {
	if err := s.begin(); err != nil {
		return false, err
	}
	defer s.finish()

	history, err := s.cfg.Snapshots.List(s.cfg.RootDir)
	if err != nil {
		return false, err
	}
	if len(history) == 0 {
		// Nothing to restore is an outcome, not an error.
		s.logf("restore requested with empty history")
		return false, nil
	}

	var selected *snapshot_models.Snapshot
	for i := range history {
		if history[i].ID == snapshotID {
			selected = &history[i]
			break
		}
	}
	if selected == nil {
		return false, &snapshot.NotFoundError{ID: snapshotID}
	}

	confirmed, err := s.cfg.Confirm(fmt.Sprintf("Restore snapshot %s? The current %s will be backed up first.", selected.ID, s.cfg.TargetFile))
	if err != nil {
		return false, err
	}
	if !confirmed {
		s.logf("restore declined by user")
		return false, nil
	}

	s.setState(models.StateRestoring)
	if _, err := s.cfg.Snapshots.Create(s.cfg.RootDir); err != nil {
		s.logf("restore aborted: pre-restore snapshot failed: %v", err)
		return false, err
	}
	if err := s.cfg.Snapshots.Restore(s.cfg.RootDir, snapshotID); err != nil {
		s.logf("restore failed: %v", err)
		return false, err
	}

	s.logf("restored snapshot %s onto %s", snapshotID, s.cfg.TargetFile)
	return true, nil
}

func (s *Session) History() ([]snapshot_models.Snapshot, error) {
	return s.cfg.Snapshots.List(s.cfg.RootDir)
}
