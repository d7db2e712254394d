package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyzer_models "github.com/meysamhadeli/docai/project_analyzer/models"
	provider_models "github.com/meysamhadeli/docai/providers/models"
	"github.com/meysamhadeli/docai/snapshot"
	"github.com/meysamhadeli/docai/workflow/contracts"
	"github.com/meysamhadeli/docai/workflow/models"
)

// fakeAnalyzer returns a canned summary without touching the filesystem.
type fakeAnalyzer struct {
	err error
}

func (f *fakeAnalyzer) AnalyzeProject(rootDir string) (*analyzer_models.ProjectSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analyzer_models.ProjectSummary{
		Name:         filepath.Base(rootDir),
		Structure:    []string{"main.go"},
		Languages:    []string{"Go"},
		FileCount:    1,
		EstimatedLOC: 30,
	}, nil
}

func (f *fakeAnalyzer) ClearCache() error { return nil }
func (f *fakeAnalyzer) GetCacheStats() (map[string]interface{}, error) {
	return map[string]interface{}{"cache_enabled": false}, nil
}

// fakeProvider counts calls and returns a scripted result.
type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
}

func (f *fakeProvider) GenerateDocument(ctx context.Context, summary *analyzer_models.ProjectSummary, apiKey string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeProvider) Health(ctx context.Context) error { return nil }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryCredentials is an in-memory credential store.
type memoryCredentials struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemoryCredentials() *memoryCredentials {
	return &memoryCredentials{values: map[string]string{}}
}

func (m *memoryCredentials) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryCredentials) Set(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryCredentials) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type sessionFixture struct {
	rootDir     string
	session     contracts.IWorkflowSession
	provider    *fakeProvider
	credentials *memoryCredentials

	confirmAnswer bool
	promptedKey   string
	promptCalls   int
}

func newFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		rootDir:       t.TempDir(),
		provider:      &fakeProvider{content: "# generated\n"},
		credentials:   newMemoryCredentials(),
		confirmAnswer: true,
		promptedKey:   "prompted-key",
	}

	session, err := NewSession(SessionConfig{
		RootDir:     f.rootDir,
		TargetFile:  "README.md",
		Analyzer:    &fakeAnalyzer{},
		Snapshots:   snapshot.NewSnapshotStore("README.md"),
		Provider:    f.provider,
		Credentials: f.credentials,
		Confirm: func(prompt string) (bool, error) {
			return f.confirmAnswer, nil
		},
		PromptCredential: func(ctx context.Context) (string, error) {
			f.promptCalls++
			return f.promptedKey, nil
		},
	})
	require.NoError(t, err)

	f.session = session
	return f
}

func (f *sessionFixture) writeTarget(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.rootDir, "README.md"), []byte(content), 0644))
}

func (f *sessionFixture) readTarget(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(f.rootDir, "README.md"))
	require.NoError(t, err)
	return string(content)
}

// Generate then apply overwrites the target, and restore brings the old
// content back byte for byte
func TestSession_GenerateApplyRestore(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "original readme")

	require.NoError(t, f.session.Generate(context.Background()))
	assert.Equal(t, models.StatePreviewable, f.session.State())

	preview, err := f.session.Preview()
	require.NoError(t, err)
	assert.Equal(t, "# generated\n", preview)

	applied, err := f.session.Apply(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "# generated\n", f.readTarget(t))
	assert.Equal(t, models.StateIdle, f.session.State())

	history, err := f.session.History()
	require.NoError(t, err)
	require.NotEmpty(t, history)

	// The oldest snapshot holds the pre-generation content
	restored, err := f.session.Restore(context.Background(), history[len(history)-1].ID)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, "original readme", f.readTarget(t))
}

// Every generation over an existing target produces its own snapshot
func TestSession_EveryGenerateSnapshots(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "v0")

	for i := 0; i < 3; i++ {
		require.NoError(t, f.session.Generate(context.Background()))
	}

	history, err := f.session.History()
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

// A failed remote call leaves the target untouched and nothing pending
func TestSession_GenerateFailureLeavesNoPending(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "untouched")
	f.provider.err = &provider_models.BackendUnavailableError{BaseURL: "http://localhost:5000"}

	err := f.session.Generate(context.Background())

	var unavailable *provider_models.BackendUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "untouched", f.readTarget(t))
	assert.Equal(t, models.StateIdle, f.session.State())

	_, err = f.session.Preview()
	assert.ErrorIs(t, err, ErrNoPendingArtifact)
}

// A cancelled generation is abandoned quietly
func TestSession_GenerateCancelled(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")
	f.provider.err = context.Canceled

	err := f.session.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StateIdle, f.session.State())
	_, err = f.session.Preview()
	assert.ErrorIs(t, err, ErrNoPendingArtifact)
}

// Apply consumes the pending artifact; a second apply has nothing to commit
func TestSession_ApplyTwice(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "original")

	require.NoError(t, f.session.Generate(context.Background()))

	applied, err := f.session.Apply(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)

	_, err = f.session.Apply(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingArtifact)
}

// Declining the apply confirmation keeps the artifact pending
func TestSession_ApplyDeclined(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "original")

	require.NoError(t, f.session.Generate(context.Background()))

	f.confirmAnswer = false
	applied, err := f.session.Apply(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, "original", f.readTarget(t))
	assert.Equal(t, models.StatePreviewable, f.session.State())

	preview, err := f.session.Preview()
	require.NoError(t, err)
	assert.Equal(t, "# generated\n", preview)
}

// Preview is repeatable and does not consume the artifact
func TestSession_PreviewIsPureRead(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "original")

	require.NoError(t, f.session.Generate(context.Background()))

	for i := 0; i < 3; i++ {
		preview, err := f.session.Preview()
		require.NoError(t, err)
		assert.Equal(t, "# generated\n", preview)
	}
	assert.Equal(t, models.StatePreviewable, f.session.State())
}

// An empty history makes restore a no-op outcome, not an error
func TestSession_RestoreWithEmptyHistory(t *testing.T) {
	f := newFixture(t)

	restored, err := f.session.Restore(context.Background(), "20240101T000000.000000000")
	require.NoError(t, err)
	assert.False(t, restored)
}

// Restoring an id missing from a non-empty history is NotFoundError
func TestSession_RestoreUnknownID(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")
	require.NoError(t, f.session.Generate(context.Background()))

	_, err := f.session.Restore(context.Background(), "20000101T000000.000000000")

	var notFound *snapshot.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

// Declining the restore confirmation changes nothing
func TestSession_RestoreDeclined(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "v1")
	require.NoError(t, f.session.Generate(context.Background()))

	history, err := f.session.History()
	require.NoError(t, err)
	require.Len(t, history, 1)

	f.writeTarget(t, "v2")
	f.confirmAnswer = false

	restored, err := f.session.Restore(context.Background(), history[0].ID)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, "v2", f.readTarget(t))

	// Declined restore takes no pre-restore snapshot either
	history, err = f.session.History()
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// Restore snapshots the current target first so it is itself undoable
func TestSession_RestoreIsUndoable(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "v1")
	require.NoError(t, f.session.Generate(context.Background()))

	history, err := f.session.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	v1Snapshot := history[0].ID

	f.writeTarget(t, "v2")
	restored, err := f.session.Restore(context.Background(), v1Snapshot)
	require.NoError(t, err)
	require.True(t, restored)
	assert.Equal(t, "v1", f.readTarget(t))

	history, err = f.session.History()
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest snapshot is the pre-restore copy of v2
	restored, err = f.session.Restore(context.Background(), history[0].ID)
	require.NoError(t, err)
	require.True(t, restored)
	assert.Equal(t, "v2", f.readTarget(t))
}

// A restore over a pending artifact keeps the artifact previewable
func TestSession_RestoreKeepsPendingArtifact(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "v1")
	require.NoError(t, f.session.Generate(context.Background()))

	history, err := f.session.History()
	require.NoError(t, err)
	require.Len(t, history, 1)

	restored, err := f.session.Restore(context.Background(), history[0].ID)
	require.NoError(t, err)
	require.True(t, restored)

	assert.Equal(t, models.StatePreviewable, f.session.State())
	preview, err := f.session.Preview()
	require.NoError(t, err)
	assert.Equal(t, "# generated\n", preview)
}

// The first generate prompts for a credential and persists it for the next
func TestSession_CredentialPromptedOnceThenStored(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")

	require.NoError(t, f.session.Generate(context.Background()))
	assert.Equal(t, 1, f.promptCalls)

	value, ok, err := f.credentials.Get("docai.api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "prompted-key", value)

	require.NoError(t, f.session.Generate(context.Background()))
	assert.Equal(t, 1, f.promptCalls)
}

// Declining the credential prompt aborts before any side effect
func TestSession_CredentialDeclined(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")
	f.promptedKey = ""

	err := f.session.Generate(context.Background())
	assert.ErrorIs(t, err, ErrCredentialDeclined)

	assert.Equal(t, 0, f.provider.callCount())
	history, err := f.session.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

// A concurrent operation is rejected, not queued
func TestSession_BusyGuard(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")

	inCall := make(chan struct{})
	release := make(chan struct{})
	blockingProvider := &blockingFakeProvider{inCall: inCall, release: release}

	session, err := NewSession(SessionConfig{
		RootDir:          f.rootDir,
		Analyzer:         &fakeAnalyzer{},
		Snapshots:        snapshot.NewSnapshotStore("README.md"),
		Provider:         blockingProvider,
		Credentials:      f.credentials,
		Confirm:          func(prompt string) (bool, error) { return true, nil },
		PromptCredential: func(ctx context.Context) (string, error) { return "key", nil },
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- session.Generate(context.Background())
	}()

	<-inCall
	err = session.Generate(context.Background())
	assert.ErrorIs(t, err, ErrWorkflowBusy)

	_, err = session.Apply(context.Background())
	assert.ErrorIs(t, err, ErrWorkflowBusy)

	close(release)
	require.NoError(t, <-done)
}

type blockingFakeProvider struct {
	inCall  chan struct{}
	release chan struct{}
}

func (b *blockingFakeProvider) GenerateDocument(ctx context.Context, summary *analyzer_models.ProjectSummary, apiKey string) (string, error) {
	close(b.inCall)
	<-b.release
	return "# generated\n", nil
}

func (b *blockingFakeProvider) Health(ctx context.Context) error { return nil }

// A session without a root directory is rejected at construction
func TestNewSession_Validation(t *testing.T) {
	_, err := NewSession(SessionConfig{})

	var noWorkspace *NoWorkspaceError
	assert.ErrorAs(t, err, &noWorkspace)

	_, err = NewSession(SessionConfig{RootDir: t.TempDir()})
	assert.Error(t, err)
}

// Generating with a missing target file still works; the snapshot step is a
// no-op and the artifact becomes pending
func TestSession_GenerateWithoutExistingTarget(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Generate(context.Background()))
	assert.Equal(t, models.StatePreviewable, f.session.State())

	history, err := f.session.History()
	require.NoError(t, err)
	assert.Empty(t, history)

	applied, err := f.session.Apply(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "# generated\n", f.readTarget(t))
}

// An analyzer failure aborts generate before any snapshot or remote call
func TestSession_AnalyzerFailure(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, "content")

	session, err := NewSession(SessionConfig{
		RootDir:          f.rootDir,
		Analyzer:         &fakeAnalyzer{err: errors.New("walk failed")},
		Snapshots:        snapshot.NewSnapshotStore("README.md"),
		Provider:         f.provider,
		Credentials:      f.credentials,
		Confirm:          func(prompt string) (bool, error) { return true, nil },
		PromptCredential: func(ctx context.Context) (string, error) { return "key", nil },
	})
	require.NoError(t, err)

	err = session.Generate(context.Background())
	require.Error(t, err)

	assert.Equal(t, 0, f.provider.callCount())
	history, listErr := session.History()
	require.NoError(t, listErr)
	assert.Empty(t, history)
}
