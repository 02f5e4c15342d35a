package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/projmigrate/internal/execshell"
	"github.com/temirov/projmigrate/internal/report"
)

const (
	loggerMissingMessageConstant             = "migration logger not configured"
	executorMissingMessageConstant           = "migration command executor not configured"
	fileSystemMissingMessageConstant         = "migration file system not configured"
	printerMissingMessageConstant            = "migration report printer not configured"
	listingErrorTemplateConstant             = "unable to list projects: %w"
	reportWriteErrorTemplateConstant         = "unable to write report file %s: %w"
	reportOpenErrorTemplateConstant          = "unable to open report file %s: %w"
	reportParseErrorTemplateConstant         = "unable to parse report file %s: %w"
	summaryErrorTemplateConstant             = "unable to print summary: %w"
	migrationErrorTemplateConstant           = "unable to migrate project %s: %w"
	homeDirectorySymbolConstant              = "~"
	reportFilePermissionsConstant            = 0o644
	reportStoredMessageConstant              = "Project report stored"
	projectsClassifiedMessageConstant        = "Projects classified"
	listingFailureToleratedMessageConstant   = "Listing command failed; continuing with captured output"
	migrationStartedMessageConstant          = "Migrating project"
	migrationFailureToleratedMessageConstant = "Project migration failed; continuing"
	migrationsCompletedMessageConstant       = "Project migrations completed"
	logFieldReportFileConstant               = "report_file"
	logFieldReportBytesConstant              = "report_bytes"
	logFieldNotMigratedCountConstant         = "not_migrated_count"
	logFieldMigratedCountConstant            = "migrated_count"
	logFieldProjectConstant                  = "project"
	logFieldAttemptCountConstant             = "attempts"
	logFieldFailedCountConstant              = "failed"
)

var (
	errLoggerMissing     = errors.New(loggerMissingMessageConstant)
	errExecutorMissing   = errors.New(executorMissingMessageConstant)
	errFileSystemMissing = errors.New(fileSystemMissingMessageConstant)
	errPrinterMissing    = errors.New(printerMissingMessageConstant)
)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ReportPrinter renders classification lines and the run summary.
type ReportPrinter interface {
	report.ClassificationObserver
	PrintSummary(result report.ParseResult) error
	PrintMergeAnnouncement(merge bool) error
}

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// ServiceDependencies describes the collaborators of the migration workflow.
type ServiceDependencies struct {
	Logger                *zap.Logger
	Executor              CommandExecutor
	FileSystem            afero.Fs
	Printer               ReportPrinter
	HomeDirectoryProvider HomeDirectoryProvider
}

// OutputStreams receives the output of migration commands while they run.
type OutputStreams struct {
	Output      io.Writer
	ErrorOutput io.Writer
}

// RunOptions configures a single workflow run.
type RunOptions struct {
	Configuration    CommandConfiguration
	WorkingDirectory string
	Streams          OutputStreams
}

// MigrationAttempt records one invocation of the migration command.
type MigrationAttempt struct {
	Project  report.ProjectIdentifier
	ExitCode int
	Failure  error
}

// RunResult captures the observable outcome of a run.
type RunResult struct {
	ReportFilePath string
	Projects       report.ParseResult
	Attempts       []MigrationAttempt
}

// FailedAttempts returns the attempts whose command exited with a non-zero status.
func (result RunResult) FailedAttempts() []MigrationAttempt {
	failed := make([]MigrationAttempt, 0)
	for _, attempt := range result.Attempts {
		if attempt.Failure != nil {
			failed = append(failed, attempt)
		}
	}
	return failed
}

// Service runs the listing, classification and migration steps.
type Service struct {
	logger                *zap.Logger
	executor              CommandExecutor
	fileSystem            afero.Fs
	printer               ReportPrinter
	homeDirectoryProvider HomeDirectoryProvider
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errLoggerMissing
	}
	if dependencies.Executor == nil {
		return nil, errExecutorMissing
	}
	if dependencies.FileSystem == nil {
		return nil, errFileSystemMissing
	}
	if dependencies.Printer == nil {
		return nil, errPrinterMissing
	}

	homeDirectoryProvider := dependencies.HomeDirectoryProvider
	if homeDirectoryProvider == nil {
		homeDirectoryProvider = os.UserHomeDir
	}

	return &Service{
		logger:                dependencies.Logger,
		executor:              dependencies.Executor,
		fileSystem:            dependencies.FileSystem,
		printer:               dependencies.Printer,
		homeDirectoryProvider: homeDirectoryProvider,
	}, nil
}

// Run lists projects into the report file, summarizes the report, and migrates pending projects when requested.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunResult, error) {
	configuration := options.Configuration.Sanitize()
	reportFilePath := service.resolveReportFilePath(configuration.ReportFile)

	if listingError := service.listProjects(executionContext, configuration, options.WorkingDirectory, reportFilePath); listingError != nil {
		return RunResult{ReportFilePath: reportFilePath}, listingError
	}

	result, summaryError := service.summarize(configuration, reportFilePath)
	if summaryError != nil {
		return result, summaryError
	}

	if !configuration.Merge {
		return result, nil
	}

	if announcementError := service.printer.PrintMergeAnnouncement(configuration.Merge); announcementError != nil {
		return result, fmt.Errorf(summaryErrorTemplateConstant, announcementError)
	}

	attempts, migrationError := service.migrateProjects(executionContext, configuration, options.WorkingDirectory, options.Streams, result.Projects.NotMigrated())
	result.Attempts = attempts
	return result, migrationError
}

// Summarize classifies an existing report file without invoking any external command.
func (service *Service) Summarize(executionContext context.Context, options RunOptions) (RunResult, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return RunResult{}, contextError
	}
	configuration := options.Configuration.Sanitize()
	return service.summarize(configuration, service.resolveReportFilePath(configuration.ReportFile))
}

func (service *Service) listProjects(executionContext context.Context, configuration CommandConfiguration, workingDirectory string, reportFilePath string) error {
	listingCommand := configuration.ListingCommand(workingDirectory)
	listingResult, listingError := service.executor.Execute(executionContext, listingCommand)
	if listingError != nil {
		if !configuration.ExitStatus.Tolerates(listingError) {
			return fmt.Errorf(listingErrorTemplateConstant, listingError)
		}
		service.logger.Warn(listingFailureToleratedMessageConstant, zap.Error(listingError))
	}

	if writeError := afero.WriteFile(service.fileSystem, reportFilePath, []byte(listingResult.StandardOutput), reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportFilePath, writeError)
	}

	service.logger.Debug(
		reportStoredMessageConstant,
		zap.String(logFieldReportFileConstant, reportFilePath),
		zap.Int(logFieldReportBytesConstant, len(listingResult.StandardOutput)),
	)
	return nil
}

func (service *Service) summarize(configuration CommandConfiguration, reportFilePath string) (RunResult, error) {
	result := RunResult{ReportFilePath: reportFilePath}

	reportFile, openError := service.fileSystem.Open(reportFilePath)
	if openError != nil {
		return result, fmt.Errorf(reportOpenErrorTemplateConstant, reportFilePath, openError)
	}
	defer reportFile.Close()

	parser := report.NewParser(
		report.WithSectionMarkers(configuration.SectionMarkers()),
		report.WithClassificationObserver(service.printer),
	)
	projects, parseError := parser.ParseReader(reportFile)
	if parseError != nil {
		return result, fmt.Errorf(reportParseErrorTemplateConstant, reportFilePath, parseError)
	}
	result.Projects = projects

	service.logger.Info(
		projectsClassifiedMessageConstant,
		zap.String(logFieldReportFileConstant, reportFilePath),
		zap.Int(logFieldNotMigratedCountConstant, projects.NotMigratedCount()),
		zap.Int(logFieldMigratedCountConstant, projects.MigratedCount()),
	)

	if printError := service.printer.PrintSummary(projects); printError != nil {
		return result, fmt.Errorf(summaryErrorTemplateConstant, printError)
	}
	return result, nil
}

func (service *Service) migrateProjects(executionContext context.Context, configuration CommandConfiguration, workingDirectory string, streams OutputStreams, projects []report.ProjectIdentifier) ([]MigrationAttempt, error) {
	attempts := make([]MigrationAttempt, 0, len(projects))
	failedCount := 0

	for _, project := range projects {
		service.logger.Info(migrationStartedMessageConstant, zap.String(logFieldProjectConstant, project.String()))

		migrationResult, migrationError := service.executor.Execute(executionContext, configuration.MigrationCommand(project, workingDirectory, streams))
		attempt := MigrationAttempt{Project: project, ExitCode: migrationResult.ExitCode}
		if migrationError != nil {
			attempt.Failure = migrationError
			attempts = append(attempts, attempt)
			if !configuration.ExitStatus.Tolerates(migrationError) {
				return attempts, fmt.Errorf(migrationErrorTemplateConstant, project, migrationError)
			}
			failedCount++
			service.logger.Warn(
				migrationFailureToleratedMessageConstant,
				zap.String(logFieldProjectConstant, project.String()),
				zap.Error(migrationError),
			)
			continue
		}
		attempts = append(attempts, attempt)
	}

	service.logger.Info(
		migrationsCompletedMessageConstant,
		zap.Int(logFieldAttemptCountConstant, len(attempts)),
		zap.Int(logFieldFailedCountConstant, failedCount),
	)
	return attempts, nil
}

func (service *Service) resolveReportFilePath(reportFilePath string) string {
	if !strings.HasPrefix(reportFilePath, homeDirectorySymbolConstant) {
		return reportFilePath
	}

	relativePath := strings.TrimPrefix(reportFilePath, homeDirectorySymbolConstant)
	if len(relativePath) > 0 && !os.IsPathSeparator(relativePath[0]) {
		return reportFilePath
	}

	homeDirectory, homeDirectoryError := service.homeDirectoryProvider()
	if homeDirectoryError != nil || len(homeDirectory) == 0 {
		return reportFilePath
	}
	return filepath.Join(homeDirectory, relativePath)
}
