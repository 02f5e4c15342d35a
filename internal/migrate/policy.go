package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/projmigrate/internal/execshell"
)

const (
	exitStatusPolicyIgnoreConstant           = "ignore"
	exitStatusPolicyStrictConstant           = "strict"
	unsupportedExitStatusPolicyTemplateConst = "unsupported exit status policy: %s"
)

// ExitStatusPolicy decides how a non-zero exit status of an external command affects the run.
type ExitStatusPolicy string

// Supported exit status policies.
const (
	// ExitStatusPolicyIgnore logs non-zero exit codes and continues.
	ExitStatusPolicyIgnore ExitStatusPolicy = exitStatusPolicyIgnoreConstant
	// ExitStatusPolicyStrict stops the run at the first non-zero exit code.
	ExitStatusPolicyStrict ExitStatusPolicy = exitStatusPolicyStrictConstant
)

// ExitStatusPolicyChoices lists accepted policy values.
func ExitStatusPolicyChoices() []string {
	return []string{exitStatusPolicyIgnoreConstant, exitStatusPolicyStrictConstant}
}

// ParseExitStatusPolicy normalizes and validates a policy value. Empty input selects ignore.
func ParseExitStatusPolicy(value string) (ExitStatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", exitStatusPolicyIgnoreConstant:
		return ExitStatusPolicyIgnore, nil
	case exitStatusPolicyStrictConstant:
		return ExitStatusPolicyStrict, nil
	default:
		return "", fmt.Errorf(unsupportedExitStatusPolicyTemplateConst, value)
	}
}

// UnmarshalText lets configuration decoding validate policies.
func (policy *ExitStatusPolicy) UnmarshalText(text []byte) error {
	parsed, parseError := ParseExitStatusPolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsed
	return nil
}

// Tolerates reports whether the failure may be skipped. Only non-zero exit codes are ever tolerated;
// processes that could not run at all always stop the workflow.
func (policy ExitStatusPolicy) Tolerates(failure error) bool {
	if failure == nil {
		return true
	}
	var commandFailure execshell.CommandFailedError
	if !errors.As(failure, &commandFailure) {
		return false
	}
	return policy != ExitStatusPolicyStrict
}
