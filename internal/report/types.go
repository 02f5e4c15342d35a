package report

// ProjectIdentifier names a project as printed on the last field of a report line.
type ProjectIdentifier string

// String returns the identifier text.
func (identifier ProjectIdentifier) String() string {
	return string(identifier)
}

// IsEmpty reports whether the identifier has no characters at all.
func (identifier ProjectIdentifier) IsEmpty() bool {
	return len(identifier) == 0
}

// ParseResult holds the projects found in each report section, in report order.
type ParseResult struct {
	notMigrated []ProjectIdentifier
	migrated    []ProjectIdentifier
}

func newParseResult(notMigrated []ProjectIdentifier, migrated []ProjectIdentifier) ParseResult {
	return ParseResult{
		notMigrated: cloneIdentifiers(notMigrated),
		migrated:    cloneIdentifiers(migrated),
	}
}

// NotMigrated returns the projects listed in the not-migrated section.
func (result ParseResult) NotMigrated() []ProjectIdentifier {
	return cloneIdentifiers(result.notMigrated)
}

// Migrated returns the projects listed in the migrated section.
func (result ParseResult) Migrated() []ProjectIdentifier {
	return cloneIdentifiers(result.migrated)
}

// NotMigratedCount returns the number of not-migrated projects.
func (result ParseResult) NotMigratedCount() int {
	return len(result.notMigrated)
}

// MigratedCount returns the number of migrated projects.
func (result ParseResult) MigratedCount() int {
	return len(result.migrated)
}

// Strings converts identifiers into plain strings.
func Strings(identifiers []ProjectIdentifier) []string {
	converted := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		converted = append(converted, string(identifier))
	}
	return converted
}

func cloneIdentifiers(identifiers []ProjectIdentifier) []ProjectIdentifier {
	cloned := make([]ProjectIdentifier, len(identifiers))
	copy(cloned, identifiers)
	return cloned
}
