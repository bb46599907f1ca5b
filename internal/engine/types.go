package engine

// Status is the terminal state of one execution.
type Status string

const (
	// StatusCompleted means the program ran to exit before the deadline.
	// A non-zero exit code is still Completed: the sandboxed program
	// failed, not the host.
	StatusCompleted Status = "completed"
	// StatusTimedOut means the deadline elapsed and the sandbox was
	// forcibly terminated.
	StatusTimedOut Status = "timed_out"
	// StatusFailed means the launch itself failed (runtime unreachable,
	// rejected limits, workspace I/O after creation).
	StatusFailed Status = "failed"
)

// Options are the per-request execution constraints. Zero values fall
// back to the configured defaults.
type Options struct {
	TimeoutMs       int64  `json:"timeoutMs,omitempty"`
	MemoryLimit     string `json:"memoryLimit,omitempty"`
	NetworkDisabled bool   `json:"networkDisabled,omitempty"`
}

// Request carries one untrusted submission. Immutable once built; a
// retry is a wholly new request with a fresh session.
type Request struct {
	Code     string  `json:"code"`
	Language string  `json:"language"`
	Options  Options `json:"options"`
}

// Result is the captured outcome of one execution.
type Result struct {
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	ExitCode        int    `json:"exitCode"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	MemoryUsage     int64  `json:"memoryUsage,omitempty"`
	TimedOut        bool   `json:"timedOut"`
	Status          Status `json:"status"`
}
