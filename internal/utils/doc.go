// Package utils holds the ambient helpers shared by the CLI: the Viper-backed
// ConfigurationLoader, the zap LoggerFactory, the command context accessor, and
// a flushing writer for console output.
package utils
