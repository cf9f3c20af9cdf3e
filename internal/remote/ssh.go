package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"

	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
)

// sshExecutor runs commands over an authenticated SSH session with a paired
// SFTP channel for existence probes. Wildcard expansion happens through a
// remote shell glob because the patterns name the remote filesystem.
type sshExecutor struct {
	client         *ssh.Client
	sftpClient     *sftp.Client
	limiter        *rate.Limiter
	commandTimeout time.Duration

	stopKeepAlive chan struct{}
	keepAliveWG   sync.WaitGroup
	closeOnce     sync.Once
	closeErr      error
}

func NewSSHExecutor(server serverDomain.ServerDomain, opts Options) (Executor, error) {
	auth, err := buildAuthMethods(server)
	if err != nil {
		return nil, err
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}

	cfg := &ssh.ClientConfig{
		User:            server.Username,
		Auth:            auth,
		Timeout:         connectTimeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // fleet hosts are provisioned, not pinned
	}

	port := server.Port
	if port == 0 {
		port = 22
	}

	addr := fmt.Sprintf("%s:%d", server.Host, port)
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: sftp channel: %v", ErrConnection, err)
	}

	maxOps := opts.MaxOpsPerSecond
	if maxOps <= 0 {
		maxOps = 20
	}

	commandTimeout := opts.CommandTimeout
	if commandTimeout == 0 {
		commandTimeout = 5 * time.Minute
	}

	e := &sshExecutor{
		client:         client,
		sftpClient:     sftpClient,
		limiter:        rate.NewLimiter(rate.Limit(maxOps), 1),
		commandTimeout: commandTimeout,
		stopKeepAlive:  make(chan struct{}),
	}

	keepAlive := opts.KeepAlive
	if keepAlive == 0 {
		keepAlive = 30 * time.Second
	}
	e.startKeepAlive(keepAlive)

	return e, nil
}

// buildAuthMethods assembles SSH auth in priority order: key file, inline
// key, password. Unreadable key material is skipped so a stale key path does
// not mask a working password.
func buildAuthMethods(server serverDomain.ServerDomain) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if server.SSHKeyPath != "" {
		keyBytes, err := os.ReadFile(server.SSHKeyPath)
		if err != nil {
			log.Printf("SSH Executor: cannot read key file %s: %v", server.SSHKeyPath, err)
		} else if signer, err := ssh.ParsePrivateKey(keyBytes); err != nil {
			log.Printf("SSH Executor: cannot parse key file %s: %v", server.SSHKeyPath, err)
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if server.SSHKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(server.SSHKey))
		if err != nil {
			log.Printf("SSH Executor: cannot parse inline key for %s: %v", server.Host, err)
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if server.Password != "" {
		methods = append(methods, ssh.Password(server.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: server %s", ErrNoAuth, server.Host)
	}
	return methods, nil
}

func (e *sshExecutor) startKeepAlive(interval time.Duration) {
	e.keepAliveWG.Add(1)
	go func() {
		defer e.keepAliveWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, _, err := e.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
					log.Printf("SSH Executor: keepalive failed: %v", err)
					return
				}
			case <-e.stopKeepAlive:
				return
			}
		}
	}()
}

func (e *sshExecutor) Execute(ctx context.Context, command string) (Result, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	session, err := e.client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("%w: new session: %v", ErrConnection, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	runCtx, cancel := context.WithTimeout(ctx, e.commandTimeout)
	defer cancel()

	select {
	case err = <-done:
	case <-runCtx.Done():
		// Best effort; most sshds ignore signals, but closing the session
		// unblocks the Run goroutine.
		_ = session.Signal(ssh.SIGKILL)
		return Result{}, fmt.Errorf("remote command timed out: %w", runCtx.Err())
	}

	out := truncateOutput(stdout.Bytes())
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				Success:  false,
				Stdout:   foldStderr(out, stderr.Bytes()),
				ExitCode: exitErr.ExitStatus(),
			}, nil
		}
		return Result{}, fmt.Errorf("%w: run: %v", ErrConnection, err)
	}

	return Result{Success: true, Stdout: out, ExitCode: 0}, nil
}

func (e *sshExecutor) FileExists(ctx context.Context, path string) (bool, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return false, err
	}

	info, err := e.sftpClient.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (e *sshExecutor) DirectoryExists(ctx context.Context, path string) (bool, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return false, err
	}

	info, err := e.sftpClient.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (e *sshExecutor) ExpandWildcard(ctx context.Context, pattern string) ([]string, error) {
	res, err := e.Execute(ctx, wildcardCommand(pattern))
	if err != nil {
		return nil, err
	}
	return parseWildcardOutput(res.Stdout), nil
}

// wildcardCommand leaves the pattern unquoted on purpose: the remote shell
// performs the glob. No match makes ls exit non-zero with empty stdout,
// which maps to an empty result rather than an error.
func wildcardCommand(pattern string) string {
	return fmt.Sprintf("ls -d %s 2>/dev/null", pattern)
}

func parseWildcardOutput(stdout string) []string {
	var paths []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, strings.TrimSuffix(line, "/"))
		}
	}
	return paths
}

func (e *sshExecutor) Close() error {
	e.closeOnce.Do(func() {
		close(e.stopKeepAlive)
		e.keepAliveWG.Wait()

		if err := e.sftpClient.Close(); err != nil {
			e.closeErr = err
		}
		if err := e.client.Close(); err != nil && e.closeErr == nil {
			e.closeErr = err
		}
	})
	return e.closeErr
}
