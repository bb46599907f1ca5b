// Package engine is the execution entry point: it owns the session
// lifecycle from workspace creation through sandboxed run to guaranteed
// cleanup, and folds every post-creation failure into a well-formed
// result so callers never see a raised fault mid-execution.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coderoom/internal/config"
	"coderoom/internal/language"
	"coderoom/internal/sandbox"
	"coderoom/internal/workspace"
)

// fallbackMemory is used when both the request token and the configured
// default fail to parse.
const fallbackMemory = 256 * 1024 * 1024

// Runtime is the sandbox backend the engine drives. Implemented by
// *sandbox.DockerExecutor.
type Runtime interface {
	Run(ctx context.Context, inv sandbox.Invocation, timeout time.Duration) sandbox.RunResult
	Ping(ctx context.Context) bool
}

// Engine executes untrusted submissions.
type Engine interface {
	Execute(ctx context.Context, req Request) (*Result, error)
	Available(ctx context.Context) bool
}

type engine struct {
	runtime    Runtime
	workspaces *workspace.Manager
	cfg        config.SandboxConfig
	sem        chan struct{}
	logger     *zap.Logger
}

// New builds an engine with a bounded number of concurrent sandboxes.
func New(rt Runtime, ws *workspace.Manager, cfg config.SandboxConfig, logger *zap.Logger) Engine {
	return &engine{
		runtime:    rt,
		workspaces: ws,
		cfg:        cfg,
		sem:        make(chan struct{}, cfg.MaxConcurrent),
		logger:     logger,
	}
}

// Execute runs one submission in a fresh session. The only error it
// returns is workspace creation failing before a session exists; every
// later failure comes back as a failure-shaped result. The workspace is
// removed on every path once created.
func (e *engine) Execute(ctx context.Context, req Request) (*Result, error) {
	sessionID := workspace.NewSessionID()

	dir, err := e.workspaces.Create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	defer e.workspaces.Remove(dir)

	log := e.logger.With(
		zap.String("session", sessionID),
		zap.String("language", req.Language),
	)

	if _, err := e.workspaces.Materialize(dir, req.Code, req.Language); err != nil {
		log.Error("failed to materialize source", zap.Error(err))
		return failedResult(err), nil
	}

	profile := language.Resolve(req.Language)
	if !language.Supported(req.Language) {
		log.Info("unrecognized language, using generic profile")
	}

	inv := sandbox.BuildInvocation(profile, dir, e.limits(req.Options))
	timeout := e.timeout(req.Options)

	// Bounded concurrency: one slot per in-flight sandbox.
	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		log.Warn("cancelled while waiting for an execution slot")
		return failedResult(ctx.Err()), nil
	}

	log.Info("starting execution",
		zap.String("image", inv.Image),
		zap.Duration("timeout", timeout),
	)

	run := e.runtime.Run(ctx, inv, timeout)

	result := &Result{
		Stdout:          run.Stdout,
		Stderr:          run.Stderr,
		ExitCode:        run.ExitCode,
		ExecutionTimeMs: run.Duration.Milliseconds(),
		MemoryUsage:     run.MemoryUsage,
		TimedOut:        run.TimedOut,
		Status:          statusOf(run),
	}

	log.Info("execution finished",
		zap.String("status", string(result.Status)),
		zap.Int("exit_code", result.ExitCode),
		zap.Int64("duration_ms", result.ExecutionTimeMs),
	)

	return result, nil
}

// Available reports whether the container runtime is reachable. Meant
// for startup and health checks, not consulted per execution.
func (e *engine) Available(ctx context.Context) bool {
	return e.runtime.Ping(ctx)
}

func (e *engine) limits(opts Options) sandbox.Limits {
	def := sandbox.ParseMemory(e.cfg.MemoryLimit, fallbackMemory)
	return sandbox.Limits{
		Memory:          sandbox.ParseMemory(opts.MemoryLimit, def),
		NanoCPUs:        e.cfg.NanoCPUs,
		PidsLimit:       e.cfg.PidsLimit,
		NetworkDisabled: opts.NetworkDisabled || !e.cfg.AllowNetwork,
	}
}

func (e *engine) timeout(opts Options) time.Duration {
	ms := opts.TimeoutMs
	if ms <= 0 {
		ms = e.cfg.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

func statusOf(run sandbox.RunResult) Status {
	switch {
	case run.Failed:
		return StatusFailed
	case run.TimedOut:
		return StatusTimedOut
	default:
		return StatusCompleted
	}
}

func failedResult(err error) *Result {
	return &Result{
		Stderr:   err.Error(),
		ExitCode: -1,
		Status:   StatusFailed,
	}
}
