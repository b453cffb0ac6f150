package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	execpkg "codeagents/pkg/exec"
)

func (r *Registry) executeCommand(ctx context.Context, args executeCommandArgs) ToolResult {
	if args.Command == "" {
		return errorResult("Empty command")
	}
	if r.executor == nil {
		return errorResult("No command executor configured")
	}

	timeout := r.commandTimeout
	if args.Timeout > 0 {
		timeout = time.Duration(args.Timeout) * time.Second
	}

	opts := &execpkg.Opts{
		Timeout: timeout,
		WorkDir: r.baseDir,
	}

	result, err := r.executor.Run(ctx, []string{"sh", "-c", args.Command}, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errorResult(fmt.Sprintf("Command timed out after %d seconds", int(timeout.Seconds())))
		}
		return errorResult(fmt.Sprintf("Error executing command: %v", err))
	}

	return ToolResult{
		Success:    result.ExitCode == 0,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ReturnCode: result.ExitCode,
	}
}
