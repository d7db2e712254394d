package utils

import (
	"context"
)

// GracefulShutdown runs the cleanup functions when the context is
// cancelled (SIGINT/SIGTERM in the interactive session).
func GracefulShutdown(ctx context.Context, cleanups ...func()) {
	<-ctx.Done()
	for _, cleanup := range cleanups {
		cleanup()
	}
}
