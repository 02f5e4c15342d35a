// Package cli constructs the projmigrate command-line interface, wiring the
// Cobra root command, the layered configuration loader, and structured
// logging around the migration workflow.
package cli
