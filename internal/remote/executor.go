package remote

import (
	"context"
	"errors"
	"strings"
	"time"

	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
)

var (
	// ErrConnection marks authentication or transport failures. Jobs that
	// hit it fail without automatic retry.
	ErrConnection = errors.New("executor connection failed")
	ErrNoAuth     = errors.New("no usable SSH authentication method")
)

// Result is the outcome of one shell command. A non-zero exit is reported
// through Success/ExitCode and is not an error by itself; callers decide
// whether empty output means "not found" or "broken".
type Result struct {
	Success  bool
	Stdout   string
	ExitCode int
}

// Executor runs commands and filesystem probes against one host. The local
// and SSH backends satisfy the same contract so every engine works against
// either. Sessions live for one logical operation; Close must run on every
// exit path.
type Executor interface {
	Execute(ctx context.Context, command string) (Result, error)
	FileExists(ctx context.Context, path string) (bool, error)
	DirectoryExists(ctx context.Context, path string) (bool, error)
	// ExpandWildcard resolves a glob pattern against the executor's
	// filesystem and returns the matching paths, normalized.
	ExpandWildcard(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// Options bounds the SSH backend. Zero values fall back to the defaults
// the config package applies.
type Options struct {
	ConnectTimeout  time.Duration
	KeepAlive       time.Duration
	CommandTimeout  time.Duration
	MaxOpsPerSecond float64
}

// Factory builds an executor for a server. Engines take a Factory instead
// of dialing themselves so tests can substitute a stub backend.
type Factory func(server serverDomain.ServerDomain) (Executor, error)

// NewFactory returns the production factory: local execution for loopback
// hosts, SSH for everything else.
func NewFactory(opts Options) Factory {
	return func(server serverDomain.ServerDomain) (Executor, error) {
		return NewExecutor(server, opts)
	}
}

// NewExecutor picks the backend by host address at construction time.
func NewExecutor(server serverDomain.ServerDomain, opts Options) (Executor, error) {
	if IsLocalHost(server.Host) {
		return NewLocalExecutor(opts), nil
	}
	return NewSSHExecutor(server, opts)
}

// IsLocalHost reports whether the address names the machine the service
// itself runs on.
func IsLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// ShellQuote wraps s in single quotes for safe interpolation into a shell
// command line. Engines use it whenever a stored path lands in a command.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
