package migrate

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/projmigrate/internal/execshell"
	"github.com/temirov/projmigrate/internal/ui"
	"github.com/temirov/projmigrate/internal/utils"
	"github.com/temirov/projmigrate/internal/utils/flags"
)

const (
	commandUseConstant                       = "projmigrate"
	commandShortDescriptionConstant          = "Classify fastlane projects and migrate the pending ones"
	commandLongDescriptionConstant           = "projmigrate runs the fastlane list_projects lane, stores its report, prints which projects are migrated, and with --merge runs the migrate lane for every project that is not migrated yet."
	summarizeCommandUseConstant              = "summarize"
	summarizeCommandShortDescriptionConstant = "Classify projects from an existing report file"
	summarizeCommandLongDescriptionConstant  = "summarize reads a previously stored list_projects report and prints the classification without running fastlane."
	mergeFlagNameConstant                    = "merge"
	mergeFlagShorthandConstant               = "m"
	mergeFlagUsageConstant                   = "Run the migrate lane for every project that is not migrated yet"
	fileFlagNameConstant                     = "file"
	fileFlagShorthandConstant                = "f"
	fileFlagUsageConstant                    = "Path of the list_projects report file"
	exitStatusFlagNameConstant               = "exit-status"
	exitStatusFlagUsageConstant              = "How non-zero fastlane exit codes are handled"
	summaryFormatFlagNameConstant            = "summary-format"
	summaryFormatFlagUsageConstant           = "Machine-readable summary appended after the text summary"
	serviceCreationErrorTemplateConstant     = "unable to construct migration service: %w"
	executorCreationErrorTemplateConstant    = "unable to construct command executor: %w"
	flagParseErrorTemplateConstant           = "invalid --%s value: %w"
	migrationRunCompletedMessageConstant     = "Project migration run completed"
	logFieldMergeConstant                    = "merge"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the migration Cobra command and its summarize subcommand.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	FileSystem                   afero.Fs
	WorkingDirectory             string
	HomeDirectoryProvider        HomeDirectoryProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the migration command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigration,
	}

	defaults := DefaultCommandConfiguration()
	persistentFlags := command.PersistentFlags()
	persistentFlags.BoolP(mergeFlagNameConstant, mergeFlagShorthandConstant, defaults.Merge, mergeFlagUsageConstant)
	persistentFlags.StringP(fileFlagNameConstant, fileFlagShorthandConstant, defaults.ReportFile, fileFlagUsageConstant)

	var exitStatusValue string
	flags.AddChoiceFlag(persistentFlags, &exitStatusValue, exitStatusFlagNameConstant, string(defaults.ExitStatus), ExitStatusPolicyChoices(), exitStatusFlagUsageConstant)
	var summaryFormatValue string
	flags.AddChoiceFlag(persistentFlags, &summaryFormatValue, summaryFormatFlagNameConstant, string(defaults.SummaryFormat), ui.SummaryFormatChoices(), summaryFormatFlagUsageConstant)

	command.AddCommand(&cobra.Command{
		Use:           summarizeCommandUseConstant,
		Short:         summarizeCommandShortDescriptionConstant,
		Long:          summarizeCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runSummary,
	})

	return command, nil
}

func (builder *CommandBuilder) runMigration(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.resolveService(command, logger, configuration)
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(command.Context(), RunOptions{
		Configuration:    configuration,
		WorkingDirectory: builder.WorkingDirectory,
		Streams: OutputStreams{
			Output:      command.OutOrStdout(),
			ErrorOutput: command.ErrOrStderr(),
		},
	})
	if runError != nil {
		return runError
	}

	logger.Info(
		migrationRunCompletedMessageConstant,
		zap.String(logFieldReportFileConstant, result.ReportFilePath),
		zap.Bool(logFieldMergeConstant, configuration.Merge),
		zap.Int(logFieldAttemptCountConstant, len(result.Attempts)),
		zap.Int(logFieldFailedCountConstant, len(result.FailedAttempts())),
	)
	return nil
}

func (builder *CommandBuilder) runSummary(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.resolveService(command, logger, configuration)
	if serviceError != nil {
		return serviceError
	}

	_, summaryError := service.Summarize(command.Context(), RunOptions{
		Configuration:    configuration,
		WorkingDirectory: builder.WorkingDirectory,
	})
	return summaryError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(mergeFlagNameConstant) {
		mergeValue, mergeError := commandFlags.GetBool(mergeFlagNameConstant)
		if mergeError != nil {
			return CommandConfiguration{}, fmt.Errorf(flagParseErrorTemplateConstant, mergeFlagNameConstant, mergeError)
		}
		configuration.Merge = mergeValue
	}

	if commandFlags.Changed(fileFlagNameConstant) {
		fileValue, fileError := commandFlags.GetString(fileFlagNameConstant)
		if fileError != nil {
			return CommandConfiguration{}, fmt.Errorf(flagParseErrorTemplateConstant, fileFlagNameConstant, fileError)
		}
		configuration.ReportFile = fileValue
	}

	if commandFlags.Changed(exitStatusFlagNameConstant) {
		policy, policyError := ParseExitStatusPolicy(commandFlags.Lookup(exitStatusFlagNameConstant).Value.String())
		if policyError != nil {
			return CommandConfiguration{}, fmt.Errorf(flagParseErrorTemplateConstant, exitStatusFlagNameConstant, policyError)
		}
		configuration.ExitStatus = policy
	}

	if commandFlags.Changed(summaryFormatFlagNameConstant) {
		summaryFormat, formatError := ui.ParseSummaryFormat(commandFlags.Lookup(summaryFormatFlagNameConstant).Value.String())
		if formatError != nil {
			return CommandConfiguration{}, fmt.Errorf(flagParseErrorTemplateConstant, summaryFormatFlagNameConstant, formatError)
		}
		configuration.SummaryFormat = summaryFormat
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command, logger *zap.Logger, configuration CommandConfiguration) (*Service, error) {
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	printer := ui.NewReportPrinter(utils.NewFlushingWriter(command.OutOrStdout()), configuration.SummaryFormat)

	service, serviceError := NewService(ServiceDependencies{
		Logger:                logger,
		Executor:              executor,
		FileSystem:            builder.resolveFileSystem(),
		Printer:               printer,
		HomeDirectoryProvider: builder.HomeDirectoryProvider,
	})
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}
	return service, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	executorOptions := make([]execshell.ExecutorOption, 0, 1)
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}
	return executor, nil
}

func (builder *CommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return afero.NewOsFs()
}
