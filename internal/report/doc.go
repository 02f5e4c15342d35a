// Package report parses the project listing printed by the migration tool.
//
// The listing contains a "not yet migrated" header followed by project lines,
// then a "been migrated" header followed by project lines and a blank line.
// Parser walks the lines once, tracking which section is active, and returns
// the project identifiers found in each section.
package report
