package contracts

import "time"

// IGenerationStats accumulates per-session counters for the generation
// workflow.
type IGenerationStats interface {
	RecordGeneration(generatedBytes int, latency time.Duration)
	RecordFailure()
	GetCurrentUsage() (generations int, failures int, generatedBytes int, latency time.Duration)
	DisplayStats(backendURL string)
	ClearStats()
}
