// Package migrate drives the project migration workflow: it runs the listing
// lane, stores its report, classifies projects into migrated and not migrated,
// prints the summary, and optionally runs the migration lane once per project
// that still needs it.
package migrate
