package execshell

// CommandEventObserver receives lifecycle notifications for every executed command.
type CommandEventObserver interface {
	// CommandStarted is called before the runner is invoked.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called when the runner produced a result, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called when the runner could not produce a result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
