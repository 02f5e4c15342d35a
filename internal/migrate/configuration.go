package migrate

import (
	"strings"

	"github.com/temirov/projmigrate/internal/execshell"
	"github.com/temirov/projmigrate/internal/report"
	"github.com/temirov/projmigrate/internal/ui"
)

const (
	// DefaultReportFile is where the listing output is stored when no path is configured.
	DefaultReportFile = "list_projects.txt"
	// ProjectPlaceholder is replaced by the project identifier in the project argument template.
	ProjectPlaceholder = "{project}"

	defaultListProjectsLaneConstant      = "list_projects"
	defaultMigrateLaneConstant           = "migrate"
	defaultProjectArgumentTemplate       = "project:" + ProjectPlaceholder
	configurationKeySeparatorConstant    = "."
	reportFileConfigurationKeyConstant   = "report_file"
	mergeConfigurationKeyConstant        = "merge"
	exitStatusConfigurationKeyConstant   = "exit_status"
	summaryFormatConfigurationKeyConst   = "summary_format"
	notMigratedMarkerConfigurationKey    = "markers.not_migrated"
	migratedMarkerConfigurationKey       = "markers.migrated"
	listingExecutableConfigurationKey    = "listing.executable"
	listingArgumentsConfigurationKey     = "listing.arguments"
	migrateExecutableConfigurationKey    = "migrate.executable"
	migrateArgumentsConfigurationKey     = "migrate.arguments"
	migrateProjectTemplateConfigurationK = "migrate.project_argument_template"
)

// CommandTemplate names an executable and its fixed arguments.
type CommandTemplate struct {
	Executable string   `mapstructure:"executable"`
	Arguments  []string `mapstructure:"arguments"`
}

// MigrateCommandTemplate extends CommandTemplate with the per-project argument.
type MigrateCommandTemplate struct {
	CommandTemplate         `mapstructure:",squash"`
	ProjectArgumentTemplate string `mapstructure:"project_argument_template"`
}

// MarkersConfiguration overrides the report section markers.
type MarkersConfiguration struct {
	NotMigrated string `mapstructure:"not_migrated"`
	Migrated    string `mapstructure:"migrated"`
}

// CommandConfiguration captures persisted configuration for the migration workflow.
type CommandConfiguration struct {
	ReportFile    string                 `mapstructure:"report_file"`
	Merge         bool                   `mapstructure:"merge"`
	ExitStatus    ExitStatusPolicy       `mapstructure:"exit_status"`
	SummaryFormat ui.SummaryFormat       `mapstructure:"summary_format"`
	Markers       MarkersConfiguration   `mapstructure:"markers"`
	Listing       CommandTemplate        `mapstructure:"listing"`
	Migrate       MigrateCommandTemplate `mapstructure:"migrate"`
}

// DefaultCommandConfiguration returns the configuration matching the fastlane lanes.
func DefaultCommandConfiguration() CommandConfiguration {
	defaultMarkers := report.DefaultSectionMarkers()
	return CommandConfiguration{
		ReportFile:    DefaultReportFile,
		Merge:         false,
		ExitStatus:    ExitStatusPolicyIgnore,
		SummaryFormat: ui.SummaryFormatText,
		Markers: MarkersConfiguration{
			NotMigrated: defaultMarkers.NotMigrated,
			Migrated:    defaultMarkers.Migrated,
		},
		Listing: CommandTemplate{
			Executable: string(execshell.CommandFastlane),
			Arguments:  []string{defaultListProjectsLaneConstant},
		},
		Migrate: MigrateCommandTemplate{
			CommandTemplate: CommandTemplate{
				Executable: string(execshell.CommandFastlane),
				Arguments:  []string{defaultMigrateLaneConstant},
			},
			ProjectArgumentTemplate: defaultProjectArgumentTemplate,
		},
	}
}

// DefaultConfigurationValues exposes the defaults as flat keys beneath prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		reportFileConfigurationKeyConstant:   defaults.ReportFile,
		mergeConfigurationKeyConstant:        defaults.Merge,
		exitStatusConfigurationKeyConstant:   string(defaults.ExitStatus),
		summaryFormatConfigurationKeyConst:   string(defaults.SummaryFormat),
		notMigratedMarkerConfigurationKey:    defaults.Markers.NotMigrated,
		migratedMarkerConfigurationKey:       defaults.Markers.Migrated,
		listingExecutableConfigurationKey:    defaults.Listing.Executable,
		listingArgumentsConfigurationKey:     defaults.Listing.Arguments,
		migrateExecutableConfigurationKey:    defaults.Migrate.Executable,
		migrateArgumentsConfigurationKey:     defaults.Migrate.Arguments,
		migrateProjectTemplateConfigurationK: defaults.Migrate.ProjectArgumentTemplate,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// Sanitize trims values and restores defaults for blank required fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.ReportFile = strings.TrimSpace(configuration.ReportFile)
	if len(sanitized.ReportFile) == 0 {
		sanitized.ReportFile = defaults.ReportFile
	}
	if len(sanitized.ExitStatus) == 0 {
		sanitized.ExitStatus = defaults.ExitStatus
	}
	if len(sanitized.SummaryFormat) == 0 {
		sanitized.SummaryFormat = defaults.SummaryFormat
	}
	if len(sanitized.Markers.NotMigrated) == 0 {
		sanitized.Markers.NotMigrated = defaults.Markers.NotMigrated
	}
	if len(sanitized.Markers.Migrated) == 0 {
		sanitized.Markers.Migrated = defaults.Markers.Migrated
	}

	sanitized.Listing = sanitizeCommandTemplate(configuration.Listing, defaults.Listing)
	sanitized.Migrate.CommandTemplate = sanitizeCommandTemplate(configuration.Migrate.CommandTemplate, defaults.Migrate.CommandTemplate)
	sanitized.Migrate.ProjectArgumentTemplate = strings.TrimSpace(configuration.Migrate.ProjectArgumentTemplate)
	if len(sanitized.Migrate.ProjectArgumentTemplate) == 0 {
		sanitized.Migrate.ProjectArgumentTemplate = defaults.Migrate.ProjectArgumentTemplate
	}

	return sanitized
}

func sanitizeCommandTemplate(template CommandTemplate, fallback CommandTemplate) CommandTemplate {
	executable := strings.TrimSpace(template.Executable)
	if len(executable) == 0 {
		return fallback
	}

	arguments := make([]string, 0, len(template.Arguments))
	for _, argument := range template.Arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) > 0 {
			arguments = append(arguments, trimmedArgument)
		}
	}
	return CommandTemplate{Executable: executable, Arguments: arguments}
}

// SectionMarkers converts the configured markers for the parser.
func (configuration CommandConfiguration) SectionMarkers() report.SectionMarkers {
	return report.SectionMarkers{
		NotMigrated: configuration.Markers.NotMigrated,
		Migrated:    configuration.Markers.Migrated,
	}
}

// ListingCommand builds the command that prints the project report.
func (configuration CommandConfiguration) ListingCommand(workingDirectory string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandName(configuration.Listing.Executable),
		Details: execshell.CommandDetails{
			Arguments:        append([]string{}, configuration.Listing.Arguments...),
			WorkingDirectory: workingDirectory,
		},
	}
}

// MigrationCommand builds the command that migrates one project.
// A template without ProjectPlaceholder is used as a prefix of the project identifier.
// The command writes to streams and reads the terminal's standard input.
func (configuration CommandConfiguration) MigrationCommand(project report.ProjectIdentifier, workingDirectory string, streams OutputStreams) execshell.ShellCommand {
	projectArgument := configuration.Migrate.ProjectArgumentTemplate + project.String()
	if strings.Contains(configuration.Migrate.ProjectArgumentTemplate, ProjectPlaceholder) {
		projectArgument = strings.ReplaceAll(configuration.Migrate.ProjectArgumentTemplate, ProjectPlaceholder, project.String())
	}

	arguments := append(append([]string{}, configuration.Migrate.Arguments...), projectArgument)
	return execshell.ShellCommand{
		Name: execshell.CommandName(configuration.Migrate.Executable),
		Details: execshell.CommandDetails{
			Arguments:            arguments,
			WorkingDirectory:     workingDirectory,
			StandardOutputWriter: streams.Output,
			StandardErrorWriter:  streams.ErrorOutput,
			InheritStandardInput: true,
		},
	}
}
