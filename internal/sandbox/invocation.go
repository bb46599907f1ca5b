// Package sandbox runs untrusted submissions in isolated containers.
//
// The package splits command composition (pure, injection-safe) from
// supervision (launch, deadline enforcement, capture, teardown). User
// code never appears on any command line; it only exists inside the
// materialized file mounted into the container.
package sandbox

import (
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-units"

	"coderoom/internal/language"
)

// workspaceTarget is the fixed path the session workspace is mounted at
// inside the container. It doubles as the working directory, which is
// why run commands can reference the source file by basename.
const workspaceTarget = "/workspace"

// Limits carries the resource constraints applied to one invocation.
type Limits struct {
	Memory          int64 // bytes
	NanoCPUs        int64
	PidsLimit       int64
	NetworkDisabled bool
}

// Invocation is a fully composed sandbox run. It is a plain value built
// from typed, system-generated fields only.
type Invocation struct {
	Image        string
	Cmd          []string
	Env          []string
	WorkspaceDir string // host path bind-mounted at workspaceTarget
	Limits       Limits
}

// BuildInvocation composes the isolated run for a resolved profile and
// workspace. Compile-then-run profiles are chained with the container
// shell from profile constants; nothing user-controlled is interpolated.
func BuildInvocation(p language.Profile, workspaceDir string, limits Limits) Invocation {
	cmd := p.RunCommand
	if len(p.CompileCommand) > 0 {
		cmd = []string{
			"sh",
			"-c",
			strings.Join(p.CompileCommand, " ") + " && exec " + strings.Join(p.RunCommand, " "),
		}
	}

	return Invocation{
		Image:        p.Image,
		Cmd:          cmd,
		Env:          p.Env,
		WorkspaceDir: workspaceDir,
		Limits:       limits,
	}
}

// ParseMemory converts a memory token like "256m" or "1g" to bytes,
// falling back to def for empty or malformed tokens.
func ParseMemory(token string, def int64) int64 {
	if token == "" {
		return def
	}
	bytes, err := units.RAMInBytes(token)
	if err != nil || bytes <= 0 {
		return def
	}
	return bytes
}

func (inv Invocation) containerConfig() *container.Config {
	return &container.Config{
		Image:           inv.Image,
		Cmd:             inv.Cmd,
		Env:             inv.Env,
		WorkingDir:      workspaceTarget,
		Tty:             false,
		OpenStdin:       false,
		AttachStdout:    true,
		AttachStderr:    true,
		NetworkDisabled: inv.Limits.NetworkDisabled,
	}
}

func (inv Invocation) hostConfig() *container.HostConfig {
	pids := inv.Limits.PidsLimit
	return &container.HostConfig{
		Resources: container.Resources{
			Memory:    inv.Limits.Memory,
			NanoCPUs:  inv.Limits.NanoCPUs,
			PidsLimit: &pids,
		},
		ReadonlyRootfs: true,
		CapDrop:        []string{"ALL"},
		SecurityOpt:    []string{"no-new-privileges"},
		Tmpfs: map[string]string{
			"/tmp": "rw,size=32m,noexec,nosuid",
		},
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: inv.WorkspaceDir,
				Target: workspaceTarget,
			},
		},
	}
}

// RunResult is the outcome of one supervised container run.
type RunResult struct {
	Stdout      string
	Stderr      string
	ExitCode    int
	Duration    time.Duration
	TimedOut    bool
	Failed      bool  // infrastructure failure, not a program failure
	MemoryUsage int64 // peak observed usage in bytes, 0 if never sampled
}
