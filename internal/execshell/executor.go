package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d"
	commandFailedStandardErrorTemplate        = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
	commandArgumentSeparatorConstant          = " "
	commandStartedLogMessageConstant          = "external command started"
	commandCompletedLogMessageConstant        = "external command completed"
	commandFailedLogMessageConstant           = "external command exited with non-zero status"
	commandExecutionFailedLogMessageConstant  = "external command could not be executed"
	logFieldCommandNameConstant               = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	logFieldStandardOutputBytesConstant       = "stdout_bytes"
)

// ErrLoggerNotConfigured indicates that a nil logger was supplied to NewShellExecutor.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates that a nil runner was supplied to NewShellExecutor.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandName identifies the executable to invoke.
type CommandName string

// CommandFastlane is the default executable for listing and migrating projects.
const CommandFastlane CommandName = "fastlane"

// CommandDetails describes how an executable is invoked.
// Output is always captured; StandardOutputWriter and StandardErrorWriter additionally receive it as it is produced.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	StandardOutputWriter io.Writer
	StandardErrorWriter  io.Writer
	InheritStandardInput bool
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line for messages.
func (command ShellCommand) String() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandArgumentSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a single command to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran but exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.String(), failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedStandardErrorTemplate, failure.Command.String(), failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a command that could not be started or waited on.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver registers an observer for command lifecycle events.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// ShellExecutor runs commands through a CommandRunner, logging and publishing lifecycle events.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: noopCommandEventObserver{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the command. A non-zero exit status yields CommandFailedError together with the captured result;
// a runner failure yields CommandExecutionError and an empty result.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.observer.CommandStarted(command)
	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(commandExecutionFailedLogMessageConstant, append(commandFields, zap.Error(runError))...)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)
	if result.ExitCode != 0 {
		executor.logger.Warn(
			commandFailedLogMessageConstant,
			append(commandFields,
				zap.Int(logFieldExitCodeConstant, result.ExitCode),
				zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
			)...,
		)
		return result, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		append(commandFields,
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.Int(logFieldStandardOutputBytesConstant, len(result.StandardOutput)),
		)...,
	)
	return result, nil
}
