// Package ui formats console output for operators.
//
// ReportPrinter writes the per-project status lines and run summary to stdout,
// while ConsoleCommandEventLogger turns external command events into concise
// log messages when console logging is selected.
package ui
