package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/projmigrate/internal/report"
)

const (
	notMigratedProjectLineTemplateConstant = "\t⚠️  not migrated project: %s\n"
	migratedProjectLineTemplateConstant    = "\t✅  migrated project    : %s\n"
	summaryHeaderConstant                  = "\nSummary:\n"
	notMigratedSummaryTemplateConstant     = "⚠️  %d not migrated projects.\n"
	migratedSummaryTemplateConstant        = "✅  %d migrated projects.\n"
	mergeAnnouncementTemplateConstant      = "merge  %t\n"
	summaryFormatTextConstant              = "text"
	summaryFormatYAMLConstant              = "yaml"
	summaryFormatJSONConstant              = "json"
	unsupportedSummaryFormatTemplate       = "unsupported summary format: %s"
	summaryEncodingErrorTemplateConstant   = "unable to encode %s summary: %w"
	jsonIndentConstant                     = "  "
)

// SummaryFormat selects the optional machine-readable summary appended to the text summary.
type SummaryFormat string

// Supported summary formats.
const (
	SummaryFormatText SummaryFormat = summaryFormatTextConstant
	SummaryFormatYAML SummaryFormat = summaryFormatYAMLConstant
	SummaryFormatJSON SummaryFormat = summaryFormatJSONConstant
)

// SummaryFormatChoices lists the accepted summary format values.
func SummaryFormatChoices() []string {
	return []string{summaryFormatTextConstant, summaryFormatYAMLConstant, summaryFormatJSONConstant}
}

// ParseSummaryFormat normalizes and validates a summary format value. Empty input selects text.
func ParseSummaryFormat(value string) (SummaryFormat, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", summaryFormatTextConstant:
		return SummaryFormatText, nil
	case summaryFormatYAMLConstant:
		return SummaryFormatYAML, nil
	case summaryFormatJSONConstant:
		return SummaryFormatJSON, nil
	default:
		return "", fmt.Errorf(unsupportedSummaryFormatTemplate, value)
	}
}

// UnmarshalText lets configuration decoding validate summary formats.
func (format *SummaryFormat) UnmarshalText(text []byte) error {
	parsed, parseError := ParseSummaryFormat(string(text))
	if parseError != nil {
		return parseError
	}
	*format = parsed
	return nil
}

type projectSummaryDocument struct {
	NotMigrated      []string `yaml:"not_migrated" json:"not_migrated"`
	Migrated         []string `yaml:"migrated" json:"migrated"`
	NotMigratedCount int      `yaml:"not_migrated_count" json:"not_migrated_count"`
	MigratedCount    int      `yaml:"migrated_count" json:"migrated_count"`
}

// ReportPrinter writes the human-readable classification lines and summary.
// Write failures are sticky: the first one is returned by every later call that can report it.
type ReportPrinter struct {
	writer        io.Writer
	summaryFormat SummaryFormat
	writeError    error
}

// NewReportPrinter constructs a printer writing to the provided writer.
func NewReportPrinter(writer io.Writer, summaryFormat SummaryFormat) *ReportPrinter {
	if writer == nil {
		writer = io.Discard
	}
	if len(summaryFormat) == 0 {
		summaryFormat = SummaryFormatText
	}
	return &ReportPrinter{writer: writer, summaryFormat: summaryFormat}
}

// ProjectClassified implements report.ClassificationObserver by printing a status line.
func (printer *ReportPrinter) ProjectClassified(section report.Section, project report.ProjectIdentifier) {
	switch section {
	case report.SectionNotMigrated:
		printer.printf(notMigratedProjectLineTemplateConstant, project)
	case report.SectionMigrated:
		printer.printf(migratedProjectLineTemplateConstant, project)
	}
}

// PrintSummary writes the project counts and, for yaml or json, the structured project lists.
func (printer *ReportPrinter) PrintSummary(result report.ParseResult) error {
	printer.printf(summaryHeaderConstant)
	printer.printf(notMigratedSummaryTemplateConstant, result.NotMigratedCount())
	printer.printf(migratedSummaryTemplateConstant, result.MigratedCount())
	if printer.writeError != nil {
		return printer.writeError
	}

	document := projectSummaryDocument{
		NotMigrated:      report.Strings(result.NotMigrated()),
		Migrated:         report.Strings(result.Migrated()),
		NotMigratedCount: result.NotMigratedCount(),
		MigratedCount:    result.MigratedCount(),
	}

	switch printer.summaryFormat {
	case SummaryFormatYAML:
		encoder := yaml.NewEncoder(printer.writer)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(summaryEncodingErrorTemplateConstant, printer.summaryFormat, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return fmt.Errorf(summaryEncodingErrorTemplateConstant, printer.summaryFormat, closeError)
		}
	case SummaryFormatJSON:
		encoder := json.NewEncoder(printer.writer)
		encoder.SetIndent("", jsonIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(summaryEncodingErrorTemplateConstant, printer.summaryFormat, encodeError)
		}
	}

	return nil
}

// PrintMergeAnnouncement writes the line that precedes the migration commands.
func (printer *ReportPrinter) PrintMergeAnnouncement(merge bool) error {
	printer.printf(mergeAnnouncementTemplateConstant, merge)
	return printer.writeError
}

func (printer *ReportPrinter) printf(template string, arguments ...any) {
	if printer.writeError != nil {
		return
	}
	if _, writeError := fmt.Fprintf(printer.writer, template, arguments...); writeError != nil {
		printer.writeError = writeError
	}
}
