package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands as operating system processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the process, waits for it, and captures both output streams in full.
// Configured writers receive a copy of each stream while the process runs.
// A non-zero exit status is reported through the result rather than as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	process.Dir = command.Details.WorkingDirectory
	process.Env = mergeEnvironment(command.Details.EnvironmentVariables)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	process.Stdout = teeWriter(&standardOutput, command.Details.StandardOutputWriter)
	process.Stderr = teeWriter(&standardError, command.Details.StandardErrorWriter)
	switch {
	case len(command.Details.StandardInput) > 0:
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	case command.Details.InheritStandardInput:
		process.Stdin = os.Stdin
	}

	result := ExecutionResult{}
	runError := process.Run()
	result.StandardOutput = standardOutput.String()
	result.StandardError = standardError.String()

	if runError == nil {
		return result, nil
	}

	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}

	return ExecutionResult{}, runError
}

func teeWriter(capture *bytes.Buffer, destination io.Writer) io.Writer {
	if destination == nil {
		return capture
	}
	return io.MultiWriter(capture, destination)
}

// mergeEnvironment returns nil when no overrides exist so the child inherits the parent environment.
func mergeEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	merged := append([]string{}, os.Environ()...)
	for environmentKey, environmentValue := range overrides {
		merged = append(merged, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
	}
	return merged
}
