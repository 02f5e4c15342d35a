package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/projmigrate/internal/execshell"
	"github.com/temirov/projmigrate/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant     = "/tmp/migrations"
	testCommandLabelExpectationConstant     = "fastlane migrate project:alpha (in /tmp/migrations)"
	testExecutionFailureReasonConstant      = "executable file not found"
	testStandardErrorMessageConstant        = "lane failed"
	testStartMessageExpectationConstant     = "Running " + testCommandLabelExpectationConstant
	testSuccessMessageExpectationConstant   = "Completed " + testCommandLabelExpectationConstant
	testFailureMessageExpectationConstant   = testCommandLabelExpectationConstant + " failed with exit code 1: " + testStandardErrorMessageConstant
	testExecutionFailureMessageExpectation  = testCommandLabelExpectationConstant + " failed: " + testExecutionFailureReasonConstant
	testWithoutWorkingDirectoryExpectation  = "Running fastlane list_projects"
	testFailureWithoutStderrExpectationText = "fastlane list_projects failed with exit code 4"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandFastlane,
		Details: execshell.CommandDetails{
			Arguments:        []string{"migrate", "project:alpha"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant + "\n"})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestCommandEventFormatterWithoutOptionalParts(testInstance *testing.T) {
	formatter := ui.CommandEventFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandFastlane,
		Details: execshell.CommandDetails{Arguments: []string{"list_projects"}, WorkingDirectory: "  "},
	}

	require.Equal(testInstance, testWithoutWorkingDirectoryExpectation, formatter.BuildStartedMessage(command))
	require.Equal(testInstance, testFailureWithoutStderrExpectationText, formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 4}))
	require.Equal(testInstance, "fastlane list_projects failed: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}

func TestNewConsoleCommandEventLoggerToleratesNilLogger(testInstance *testing.T) {
	eventLogger := ui.NewConsoleCommandEventLogger(nil)
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandFastlane})
	})
}
