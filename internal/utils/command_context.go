package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
)

type commandContextKey string

// CommandContextAccessor stores and retrieves values shared between the root command and subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the resolved configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return context.WithValue(ensureContext(parentContext), configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath returns the configuration file path, if one was attached.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithLogLevel attaches the effective log level.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	return context.WithValue(ensureContext(parentContext), logLevelContextKeyConstant, logLevel)
}

// LogLevel returns the effective log level, if one was attached.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, logLevelContextKeyConstant)
}

func ensureContext(parentContext context.Context) context.Context {
	if parentContext == nil {
		return context.Background()
	}
	return parentContext
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
