package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	// DefaultNotMigratedMarker identifies the header line that opens the not-migrated section.
	DefaultNotMigratedMarker = "not yet migrated"
	// DefaultMigratedMarker identifies the header line that opens the migrated section.
	DefaultMigratedMarker = "been migrated"

	projectFieldSeparatorConstant       = " "
	initialLineBufferSizeConstant       = 64 * 1024
	maximumLineBufferSizeConstant       = 4 * 1024 * 1024
	reportReadErrorTemplateConstant     = "unable to read report: %w"
	sectionBeforeSectionsLabelConstant  = "before_sections"
	sectionNotMigratedLabelConstant     = "not_migrated"
	sectionMigratedLabelConstant        = "migrated"
	sectionUnknownLabelTemplateConstant = "section(%d)"
)

// Section enumerates the report regions a line can belong to.
type Section int

// Report sections in the order they are entered.
const (
	SectionBeforeSections Section = iota
	SectionNotMigrated
	SectionMigrated
)

// String returns a stable label for the section.
func (section Section) String() string {
	switch section {
	case SectionBeforeSections:
		return sectionBeforeSectionsLabelConstant
	case SectionNotMigrated:
		return sectionNotMigratedLabelConstant
	case SectionMigrated:
		return sectionMigratedLabelConstant
	default:
		return fmt.Sprintf(sectionUnknownLabelTemplateConstant, int(section))
	}
}

// SectionMarkers holds the substrings that announce each report section.
type SectionMarkers struct {
	NotMigrated string
	Migrated    string
}

// DefaultSectionMarkers returns the markers printed by the listing command.
func DefaultSectionMarkers() SectionMarkers {
	return SectionMarkers{
		NotMigrated: DefaultNotMigratedMarker,
		Migrated:    DefaultMigratedMarker,
	}
}

// ClassificationObserver receives every project line as it is attributed to a section.
type ClassificationObserver interface {
	ProjectClassified(section Section, project ProjectIdentifier)
}

// ParserOption customizes a Parser.
type ParserOption func(parser *Parser)

// WithSectionMarkers overrides the section markers. Empty markers keep their defaults.
func WithSectionMarkers(markers SectionMarkers) ParserOption {
	return func(parser *Parser) {
		if len(markers.NotMigrated) > 0 {
			parser.markers.NotMigrated = markers.NotMigrated
		}
		if len(markers.Migrated) > 0 {
			parser.markers.Migrated = markers.Migrated
		}
	}
}

// WithClassificationObserver registers an observer notified for every appended project.
func WithClassificationObserver(observer ClassificationObserver) ParserOption {
	return func(parser *Parser) {
		parser.observer = observer
	}
}

// Parser turns a migration report into categorized project lists.
type Parser struct {
	markers  SectionMarkers
	observer ClassificationObserver
}

// NewParser constructs a Parser with the default markers unless overridden.
func NewParser(options ...ParserOption) *Parser {
	parser := &Parser{markers: DefaultSectionMarkers()}
	for _, option := range options {
		if option != nil {
			option(parser)
		}
	}
	return parser
}

// Markers returns the markers the parser recognizes.
func (parser *Parser) Markers() SectionMarkers {
	return parser.markers
}

// ParseLines classifies the provided lines in a single forward pass.
func (parser *Parser) ParseLines(lines []string) ParseResult {
	accumulator := parser.newAccumulator()
	for _, line := range lines {
		if !accumulator.consume(line) {
			break
		}
	}
	return accumulator.result()
}

// ParseReader reads the report line by line and classifies it. Only read failures are returned as errors;
// lines after the terminating blank line are never read.
func (parser *Parser) ParseReader(reader io.Reader) (ParseResult, error) {
	accumulator := parser.newAccumulator()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, initialLineBufferSizeConstant), maximumLineBufferSizeConstant)
	for scanner.Scan() {
		if !accumulator.consume(scanner.Text()) {
			return accumulator.result(), nil
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return accumulator.result(), fmt.Errorf(reportReadErrorTemplateConstant, scanError)
	}

	return accumulator.result(), nil
}

// ExtractProjectIdentifier returns the last single-space separated field of the line with trailing whitespace removed.
func ExtractProjectIdentifier(line string) ProjectIdentifier {
	lastField := line
	if separatorIndex := strings.LastIndex(line, projectFieldSeparatorConstant); separatorIndex >= 0 {
		lastField = line[separatorIndex+len(projectFieldSeparatorConstant):]
	}
	return ProjectIdentifier(strings.TrimRightFunc(lastField, isTrailingWhitespace))
}

func isTrailingWhitespace(character rune) bool {
	switch character {
	case '\n', '\r', '\t', '\v', '\f', ' ':
		return true
	default:
		return false
	}
}

func (parser *Parser) newAccumulator() *sectionAccumulator {
	return &sectionAccumulator{
		markers:  parser.markers,
		observer: parser.observer,
		section:  SectionBeforeSections,
	}
}

type sectionAccumulator struct {
	markers     SectionMarkers
	observer    ClassificationObserver
	section     Section
	notMigrated []ProjectIdentifier
	migrated    []ProjectIdentifier
}

// consume applies one line and reports whether parsing should continue.
func (accumulator *sectionAccumulator) consume(line string) bool {
	if strings.Contains(line, accumulator.markers.NotMigrated) {
		if accumulator.section == SectionBeforeSections {
			accumulator.section = SectionNotMigrated
		}
		return true
	}

	if strings.Contains(line, accumulator.markers.Migrated) {
		accumulator.section = SectionMigrated
		return true
	}

	project := ExtractProjectIdentifier(line)

	switch accumulator.section {
	case SectionMigrated:
		// A blank line ends the whole report, not only the migrated section.
		if project.IsEmpty() {
			return false
		}
		accumulator.migrated = append(accumulator.migrated, project)
	case SectionNotMigrated:
		accumulator.notMigrated = append(accumulator.notMigrated, project)
	default:
		return true
	}

	if accumulator.observer != nil {
		accumulator.observer.ProjectClassified(accumulator.section, project)
	}
	return true
}

func (accumulator *sectionAccumulator) result() ParseResult {
	return newParseResult(accumulator.notMigrated, accumulator.migrated)
}
