package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"examjudge/internal/judge/language"
	"examjudge/internal/judge/model"
	appErr "examjudge/pkg/errors"
	"examjudge/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultWallTimeout    = 30 * time.Second
	defaultMaxOutputBytes = 64 * 1024
)

// RunRequest describes one isolated compile-and-run job.
type RunRequest struct {
	Language language.Spec
	Code     string
	Stdin    string
}

// Executor runs untrusted code and classifies the outcome.
type Executor interface {
	Run(ctx context.Context, req RunRequest) (model.ExecutionResult, error)
}

// Config controls the process executor.
type Config struct {
	// WorkRoot is where disposable working directories are created.
	// Defaults to os.TempDir().
	WorkRoot string `yaml:"workRoot"`

	// WallTimeout is the hard wall-clock limit per execution.
	WallTimeout time.Duration `yaml:"wallTimeout"`

	// MaxOutputBytes caps captured stdout and stderr independently.
	MaxOutputBytes int64 `yaml:"maxOutputBytes"`
}

// ProcessExecutor runs code as a child process group on the host.
// Each job gets its own throwaway directory, removed on every exit path.
type ProcessExecutor struct {
	cfg Config
}

// NewProcessExecutor creates an executor, applying config defaults.
func NewProcessExecutor(cfg Config) (*ProcessExecutor, error) {
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = os.TempDir()
	}
	if cfg.WallTimeout <= 0 {
		cfg.WallTimeout = defaultWallTimeout
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	if err := os.MkdirAll(cfg.WorkRoot, 0o755); err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxSetupError, "create work root failed")
	}
	return &ProcessExecutor{cfg: cfg}, nil
}

// Run writes the source, compiles when the language requires it, then
// executes with stdin piped. Judged outcomes (compile errors, runtime
// errors, timeouts) come back as a result with nil error; only
// infrastructure failures return an error.
func (e *ProcessExecutor) Run(ctx context.Context, req RunRequest) (model.ExecutionResult, error) {
	if req.Language.SourceFile == "" {
		return model.ExecutionResult{}, appErr.New(appErr.SandboxSetupError).WithMessage("language spec has no source file")
	}

	workDir := filepath.Join(e.cfg.WorkRoot, "job-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return model.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxSetupError, "create work dir failed")
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn(ctx, "sandbox cleanup failed",
				zap.String("work_dir", workDir), zap.Error(err))
		}
	}()

	srcPath := filepath.Join(workDir, req.Language.SourceFile)
	if err := os.WriteFile(srcPath, []byte(req.Code), 0o644); err != nil {
		return model.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxSetupError, "write source failed")
	}

	if req.Language.CompileEnabled {
		result, done, err := e.compile(ctx, req.Language, workDir)
		if err != nil {
			return model.ExecutionResult{}, err
		}
		if done {
			return result, nil
		}
	}

	return e.execute(ctx, req, workDir)
}

// compile runs the compile command. done is true when compilation failed
// and the returned result is final.
func (e *ProcessExecutor) compile(ctx context.Context, lang language.Spec, workDir string) (model.ExecutionResult, bool, error) {
	argv, err := lang.CompileCommand(workDir)
	if err != nil {
		return model.ExecutionResult{}, false, err
	}

	cctx, cancel := context.WithTimeout(ctx, e.cfg.WallTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	stderr := newCappedBuffer(e.cfg.MaxOutputBytes)
	cmd.Stderr = stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 || runErr != nil {
		msg := stderr.String()
		if msg == "" && runErr != nil {
			msg = runErr.Error()
		}
		return model.ExecutionResult{
			Status:   model.ExecCompilationError,
			Stderr:   msg,
			ExitCode: exitCode(runErr, cmd.ProcessState),
		}, true, nil
	}
	return model.ExecutionResult{}, false, nil
}

func (e *ProcessExecutor) execute(ctx context.Context, req RunRequest, workDir string) (model.ExecutionResult, error) {
	argv, err := req.Language.RunCommand(workDir)
	if err != nil {
		return model.ExecutionResult{}, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = strings.NewReader(req.Stdin)

	stdout := newCappedBuffer(e.cfg.MaxOutputBytes)
	stderr := newCappedBuffer(e.cfg.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return model.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxSetupError, "start process failed")
	}

	var timedOut atomic.Bool
	done := make(chan struct{})
	go func() {
		select {
		case <-time.After(e.cfg.WallTimeout):
			timedOut.Store(true)
			killProcessGroup(cmd.Process.Pid)
		case <-ctx.Done():
			killProcessGroup(cmd.Process.Pid)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	elapsed := time.Since(start).Milliseconds()

	result := model.ExecutionResult{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		ExitCode:        exitCode(waitErr, cmd.ProcessState),
		ExecutionTimeMs: elapsed,
	}

	switch {
	case timedOut.Load():
		result.Status = model.ExecTimeout
		marker := fmt.Sprintf("Execution timed out after %s", e.cfg.WallTimeout)
		if result.Stderr != "" {
			result.Stderr += "\n"
		}
		result.Stderr += marker
	case result.Stderr != "" || waitErr != nil:
		result.Status = model.ExecRuntimeError
		if result.Stderr == "" && waitErr != nil {
			result.Stderr = waitErr.Error()
		}
	default:
		result.Status = model.ExecOK
	}
	return result, nil
}

func exitCode(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// cappedBuffer keeps the first max bytes and silently discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
	max int64
}

func newCappedBuffer(max int64) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	remaining := c.max - int64(c.buf.Len())
	if remaining <= 0 {
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		c.buf.Write(p[:remaining])
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) Len() int { return c.buf.Len() }

func (c *cappedBuffer) String() string { return c.buf.String() }

var _ Executor = (*ProcessExecutor)(nil)
