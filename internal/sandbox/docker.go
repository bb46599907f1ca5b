package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"
)

// statsInterval is how often a running container's memory usage is
// sampled for the best-effort peak in RunResult.MemoryUsage.
const statsInterval = 100 * time.Millisecond

// DockerExecutor supervises container runs through the Docker API.
type DockerExecutor struct {
	cli    *client.Client
	logger *zap.Logger
}

// NewDockerExecutor connects to the Docker daemon from the environment.
func NewDockerExecutor(logger *zap.Logger) (*DockerExecutor, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &DockerExecutor{cli: cli, logger: logger}, nil
}

// Ping reports whether the container runtime answers a trivial version
// query. It never fails outward; the detail is logged.
func (d *DockerExecutor) Ping(ctx context.Context) bool {
	if _, err := d.cli.Ping(ctx); err != nil {
		d.logger.Warn("container runtime unreachable", zap.Error(err))
		return false
	}
	return true
}

// Run executes the invocation under a wall-clock deadline and returns a
// result on every path. Launch failures come back as a failure-shaped
// result rather than an error so callers always get the same shape.
func (d *DockerExecutor) Run(ctx context.Context, inv Invocation, timeout time.Duration) RunResult {
	start := time.Now()

	createResp, err := d.cli.ContainerCreate(
		ctx,
		inv.containerConfig(),
		inv.hostConfig(),
		nil,
		nil,
		"",
	)
	if err != nil {
		return d.launchFailure(start, fmt.Errorf("container create: %w", err))
	}
	containerID := createResp.ID

	// The container is force-removed no matter how the run ends.
	defer func() {
		if rmErr := d.cli.ContainerRemove(
			context.Background(),
			containerID,
			container.RemoveOptions{Force: true},
		); rmErr != nil {
			d.logger.Warn("failed to remove container",
				zap.String("container", containerID),
				zap.Error(rmErr),
			)
		}
	}()

	// Attach before start so no output is lost.
	attachResp, err := d.cli.ContainerAttach(
		ctx,
		containerID,
		container.AttachOptions{
			Stream: true,
			Stdout: true,
			Stderr: true,
		},
	)
	if err != nil {
		return d.launchFailure(start, fmt.Errorf("container attach: %w", err))
	}
	defer attachResp.Close()

	var stdoutBuf, stderrBuf strings.Builder
	outputDone := make(chan error, 1)
	go func() {
		_, copyErr := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attachResp.Reader)
		outputDone <- copyErr
	}()

	if err := d.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return d.launchFailure(start, fmt.Errorf("container start: %w", err))
	}

	// Wait on a background context: the deadline is enforced by the
	// select below, and the post-kill wait must still observe the stop.
	waitCh, errCh := d.cli.ContainerWait(
		context.Background(),
		containerID,
		container.WaitConditionNotRunning,
	)

	statsStop := make(chan struct{})
	peakCh := make(chan int64, 1)
	go func() {
		peakCh <- d.samplePeakMemory(containerID, statsStop)
	}()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		exitCode  int
		interrupt error
	)

	select {
	case waitErr := <-errCh:
		close(statsStop)
		<-outputDone
		return d.launchFailure(start, fmt.Errorf("container wait: %w", waitErr))

	case status := <-waitCh:
		exitCode = int(status.StatusCode)

	case <-runCtx.Done():
		// Deadline elapsed or the caller went away; either way the
		// container must die now.
		interrupt = runCtx.Err()
		if killErr := d.cli.ContainerKill(
			context.Background(),
			containerID,
			"KILL",
		); killErr != nil {
			d.logger.Warn("failed to kill container after interrupt",
				zap.String("container", containerID),
				zap.Error(killErr),
			)
		}
		// Wait until the container actually stops before reporting.
		select {
		case status := <-waitCh:
			exitCode = int(status.StatusCode)
		case <-errCh:
		}
	}

	close(statsStop)
	<-outputDone
	peak := <-peakCh

	return terminalResult(
		stdoutBuf.String(),
		stderrBuf.String(),
		exitCode,
		interrupt,
		timeout,
		time.Since(start),
		peak,
	)
}

// terminalResult assembles the outcome from the captured streams and
// the interrupt that ended supervision, if any. Only an elapsed
// deadline is a timeout; a cancelled caller is an infrastructure
// failure, not a timeout the program never reached.
func terminalResult(stdout, stderr string, exitCode int, interrupt error, timeout, duration time.Duration, peak int64) RunResult {
	res := RunResult{
		Stdout:      stdout,
		Stderr:      stderr,
		ExitCode:    exitCode,
		Duration:    duration,
		MemoryUsage: peak,
	}

	switch {
	case interrupt == nil:
	case errors.Is(interrupt, context.DeadlineExceeded):
		res.TimedOut = true
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		res.Stderr += fmt.Sprintf("\nexecution timed out after %dms", timeout.Milliseconds())
	default:
		res.Failed = true
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		res.Stderr += "\nexecution cancelled"
	}

	return res
}

func (d *DockerExecutor) launchFailure(start time.Time, err error) RunResult {
	d.logger.Error("sandbox launch failed", zap.Error(err))
	return RunResult{
		Stderr:   err.Error(),
		ExitCode: -1,
		Duration: time.Since(start),
		Failed:   true,
	}
}

// samplePeakMemory polls one-shot stats until stop closes and returns
// the highest usage observed. Zero means the container exited before
// the first successful sample.
func (d *DockerExecutor) samplePeakMemory(containerID string, stop <-chan struct{}) int64 {
	var peak int64
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return peak
		case <-ticker.C:
			resp, err := d.cli.ContainerStatsOneShot(context.Background(), containerID)
			if err != nil {
				continue
			}
			var stats container.StatsResponse
			decodeErr := json.NewDecoder(resp.Body).Decode(&stats)
			resp.Body.Close()
			if decodeErr != nil {
				continue
			}
			if usage := int64(stats.MemoryStats.Usage); usage > peak {
				peak = usage
			}
		}
	}
}
