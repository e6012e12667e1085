package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/Skryldev/flactranscode/domain/ports"
	"github.com/Skryldev/flactranscode/pkg/logger"
	"go.uber.org/zap"
)

// Executor implements ports.ToolRunner
type Executor struct {
	log *logger.Logger
}

// NewExecutor creates a new executor. A nil logger discards output.
func NewExecutor(log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{log: log}
}

// RunPipeline starts every command with stage i's stdout connected to stage
// i+1's stdin, waits for all of them and returns one result per stage.
// The returned error is only set when the pipeline could not be started.
// Canceling ctx kills every running stage.
func (e *Executor) RunPipeline(ctx context.Context, cmds []ports.Command) ([]ports.StageResult, error) {
	if len(cmds) == 0 {
		return nil, errors.New("empty pipeline")
	}

	procs := make([]*exec.Cmd, len(cmds))
	stderr := make([]bytes.Buffer, len(cmds))
	for i, c := range cmds {
		cmd := exec.CommandContext(ctx, c.Path, c.Args...)
		cmd.Stderr = &stderr[i]
		procs[i] = cmd
	}

	// Parent copies of the pipe ends; closed once the children hold theirs.
	var ends []*os.File
	closeEnds := func() {
		for _, f := range ends {
			_ = f.Close()
		}
		ends = nil
	}
	for i := 0; i < len(procs)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeEnds()
			return nil, fmt.Errorf("create pipe: %w", err)
		}
		procs[i].Stdout = w
		procs[i+1].Stdin = r
		ends = append(ends, r, w)
	}

	e.log.Debug("starting pipeline", zap.Strings("pipeline", describe(cmds)))

	started := 0
	var startErr error
	for i, cmd := range procs {
		if err := cmd.Start(); err != nil {
			startErr = fmt.Errorf("start %s: %w", cmds[i].Path, err)
			break
		}
		started++
	}
	closeEnds()

	if startErr != nil {
		for _, cmd := range procs[:started] {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
		return nil, startErr
	}

	results := make([]ports.StageResult, len(procs))
	for i, cmd := range procs {
		results[i] = stageResult(cmds[i], cmd.Wait(), stderr[i].String())
	}
	return results, nil
}

func stageResult(c ports.Command, err error, stderr string) ports.StageResult {
	res := ports.StageResult{Command: c, Stderr: stderr, Err: err}
	if err == nil {
		return res
	}
	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() && ws.Signal() == syscall.SIGPIPE {
			res.BrokenPipe = true
		}
	}
	return res
}

// FirstFailure picks the stage to blame. A stage killed by SIGPIPE is
// usually the victim of a later stage exiting early, so the earliest stage
// that failed any other way wins. Returns nil when every stage succeeded.
func FirstFailure(results []ports.StageResult) *ports.StageResult {
	var brokenPipe *ports.StageResult
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			continue
		}
		if r.BrokenPipe {
			if brokenPipe == nil {
				brokenPipe = r
			}
			continue
		}
		return r
	}
	return brokenPipe
}

func describe(cmds []ports.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = fmt.Sprintf("%s %q", c.Path, c.Args)
	}
	return out
}
