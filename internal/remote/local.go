package remote

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"
)

// maxOutputBytes caps captured command output so a runaway find or head
// cannot exhaust memory.
const maxOutputBytes = 1 << 20

// localExecutor runs everything against the host the service itself runs
// on. Existence checks and glob expansion use direct filesystem calls; only
// Execute shells out.
type localExecutor struct {
	commandTimeout time.Duration
}

func NewLocalExecutor(opts Options) Executor {
	timeout := opts.CommandTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &localExecutor{commandTimeout: timeout}
}

func (e *localExecutor) Execute(ctx context.Context, command string) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := truncateOutput(stdout.Bytes())

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a reported outcome, not a failure of the
			// executor. Stderr is folded into the output tail so callers
			// see why the command complained.
			return Result{
				Success:  false,
				Stdout:   foldStderr(out, stderr.Bytes()),
				ExitCode: exitErr.ExitCode(),
			}, nil
		}
		return Result{}, err
	}

	return Result{Success: true, Stdout: out, ExitCode: 0}, nil
}

func (e *localExecutor) FileExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (e *localExecutor) DirectoryExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (e *localExecutor) ExpandWildcard(_ context.Context, pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Clean(m))
	}
	sort.Strings(paths)
	return paths, nil
}

func (e *localExecutor) Close() error {
	return nil
}

func truncateOutput(b []byte) string {
	if len(b) > maxOutputBytes {
		b = b[:maxOutputBytes]
	}
	return string(b)
}

func foldStderr(stdout string, stderr []byte) string {
	errText := string(bytes.TrimSpace(stderr))
	if errText == "" {
		return stdout
	}
	if stdout == "" {
		return errText
	}
	return stdout + "\n" + errText
}
