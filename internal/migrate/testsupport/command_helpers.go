package testsupport

import (
	"context"
	"strings"

	"github.com/temirov/projmigrate/internal/execshell"
)

// CommandOutcome configures the response returned for one command line.
type CommandOutcome struct {
	Result execshell.ExecutionResult
	Error  error
}

// CommandExecutorStub records executed commands and replays configured outcomes keyed by command line.
type CommandExecutorStub struct {
	Outcomes         map[string]CommandOutcome
	ExecutedCommands []execshell.ShellCommand
}

// Execute records the command and returns the outcome registered for its command line.
// Non-zero exit codes without an explicit error are reported as execshell.CommandFailedError.
func (executor *CommandExecutorStub) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.ExecutedCommands = append(executor.ExecutedCommands, command)
	if contextError := executionContext.Err(); contextError != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: contextError}
	}

	outcome, exists := executor.Outcomes[command.String()]
	if !exists {
		return execshell.ExecutionResult{}, nil
	}
	if outcome.Error != nil {
		return outcome.Result, outcome.Error
	}
	if outcome.Result.ExitCode != 0 {
		return outcome.Result, execshell.CommandFailedError{Command: command, Result: outcome.Result}
	}
	return outcome.Result, nil
}

// ExecutedCommandLines returns the recorded commands rendered as command lines.
func (executor *CommandExecutorStub) ExecutedCommandLines() []string {
	commandLines := make([]string, 0, len(executor.ExecutedCommands))
	for _, command := range executor.ExecutedCommands {
		commandLines = append(commandLines, command.String())
	}
	return commandLines
}

// ReportLines joins report lines with newline terminators.
func ReportLines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
