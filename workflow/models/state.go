package models

import "time"

// State is the workflow's position in the generate/preview/apply/restore
// sequence. It is process-local and resets to Idle on startup.
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateSnapshotPending
	StateGenerating
	StatePreviewable
	StateApplying
	StateRestoring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateSnapshotPending:
		return "snapshot-pending"
	case StateGenerating:
		return "generating"
	case StatePreviewable:
		return "previewable"
	case StateApplying:
		return "applying"
	case StateRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// PendingArtifact is the most recently generated, not yet applied document.
// It lives in process memory only; a successful apply consumes it.
type PendingArtifact struct {
	Content     string
	GeneratedAt time.Time
}
