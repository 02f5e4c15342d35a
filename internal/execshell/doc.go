// Package execshell runs external tools such as the fastlane listing and migration lanes.
//
// CommandRunner is the injectable process boundary; OSCommandRunner implements it
// with os/exec. ShellExecutor wraps a runner with structured logging, lifecycle
// events, and typed errors for non-zero exit codes and execution failures.
package execshell
