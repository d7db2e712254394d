package contracts

import (
	"context"

	"github.com/meysamhadeli/docai/project_analyzer/models"
)

// IDocGenProvider exchanges a project summary and a credential for generated
// README markdown.
type IDocGenProvider interface {
	// GenerateDocument performs the remote call with bounded retry. On final
	// failure the returned error is one of the classified types in
	// providers/models, except for context cancellation which propagates
	// unwrapped.
	GenerateDocument(ctx context.Context, summary *models.ProjectSummary, apiKey string) (string, error)

	// Health reports whether the backend answers its health endpoint.
	Health(ctx context.Context) error
}
