package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/meysamhadeli/docai/constants/lipgloss"
	"github.com/meysamhadeli/docai/stats/contracts"
)

// generationStats implementation
type generationStats struct {
	mu             sync.Mutex
	generations    int
	failures       int
	generatedBytes int
	totalLatency   time.Duration
}

// NewGenerationStats creates a new session statistics tracker.
func NewGenerationStats() contracts.IGenerationStats {
	return &generationStats{}
}

// RecordGeneration accumulates one successful generation for the session.
func (gs *generationStats) RecordGeneration(generatedBytes int, latency time.Duration) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.generations++
	gs.generatedBytes += generatedBytes
	gs.totalLatency += latency
}

func (gs *generationStats) RecordFailure() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.failures++
}

func (gs *generationStats) GetCurrentUsage() (int, int, int, time.Duration) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.generations, gs.failures, gs.generatedBytes, gs.totalLatency
}

func (gs *generationStats) DisplayStats(backendURL string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	avg := time.Duration(0)
	if gs.generations > 0 {
		avg = gs.totalLatency / time.Duration(gs.generations)
	}

	statsInfo := fmt.Sprintf("Generations: %d - Failures: %d - Generated: %.1f KB - Avg Latency: %s - Backend: %s",
		gs.generations, gs.failures, float64(gs.generatedBytes)/1024, avg.Round(time.Millisecond), backendURL)

	statsBox := lipgloss.BoxStyle.Render(statsInfo)
	fmt.Println(statsBox)
}

func (gs *generationStats) ClearStats() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.generations = 0
	gs.failures = 0
	gs.generatedBytes = 0
	gs.totalLatency = 0
}
