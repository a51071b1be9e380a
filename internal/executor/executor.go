package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
)

// waitDelay bounds how long Wait blocks on output after the process is killed
const waitDelay = 2 * time.Second

// CommandExecutor runs external tools and streams their combined output to the log
type CommandExecutor struct {
	logger *zap.Logger
}

// NewExecutor creates a new command executor and reports whether the
// configured transcoder can be found in PATH
func NewExecutor(logger *zap.Logger, cfg domain.Config) *CommandExecutor {
	binary := cfg.GetTranscoder()
	if commandExists(binary) {
		logger.Info("Transcoder detected", zap.String("binary", binary))
	} else {
		logger.Warn("Transcoder not found, non-native formats will fail to play",
			zap.String("binary", binary))
	}

	return &CommandExecutor{logger: logger}
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Run executes the job synchronously. The process exit code is stored in
// job.ExitCode; an error is returned only when the process could not be
// started or was interrupted by ctx.
func (e *CommandExecutor) Run(ctx context.Context, job *domain.TranscodeJob) error {
	if job.Binary == "" {
		return fmt.Errorf("no binary set for job on %s", job.Input)
	}

	e.logger.Debug("Running command",
		zap.String("command", job.Binary),
		zap.Strings("args", job.Args))

	cmd := exec.CommandContext(ctx, job.Binary, job.Args...)
	cmd.WaitDelay = waitDelay

	// Merge stdout and stderr into a single stream
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return fmt.Errorf("failed to start %s: %w", job.Binary, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.streamOutput(pr, job.Binary)
	}()

	waitErr := cmd.Wait()
	pw.Close()
	<-done

	if ctx.Err() != nil {
		job.ExitCode = -1
		return fmt.Errorf("%s interrupted: %w", job.Binary, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		job.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		job.ExitCode = exitErr.ExitCode()
	default:
		return fmt.Errorf("failed to wait for %s: %w", job.Binary, waitErr)
	}

	e.logger.Debug("Command finished",
		zap.String("command", job.Binary),
		zap.Int("exitCode", job.ExitCode))

	return nil
}

// streamOutput logs every output line until the writer side is closed
func (e *CommandExecutor) streamOutput(r io.ReadCloser, binary string) {
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e.logger.Debug("Command output",
			zap.String("command", binary),
			zap.String("line", scanner.Text()))
	}
	// Drain so the child never blocks on a full pipe after a scan error
	_, _ = io.Copy(io.Discard, r)
}
