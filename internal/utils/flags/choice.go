package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	choiceValueTypeName         = "choice"
	invalidChoiceErrorTemplate  = "invalid value %q (expected one of %s)"
	choiceListSeparatorTemplate = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := normalize(defaultChoice)
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		normalizedChoice := normalize(choice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		displayValue := strings.TrimSpace(choice)
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(displayValue)
		}
		highlighted = append(highlighted, displayValue)
	}

	return highlighted
}

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive choices.
type ChoiceValue struct {
	target  *string
	choices []string
}

// AddChoiceFlag registers a string flag that rejects values outside choices.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	*target = normalize(defaultChoice)
	choiceValue := &ChoiceValue{target: target, choices: append([]string{}, choices...)}
	flagSet.Var(choiceValue, name, FormatChoiceUsage(defaultChoice, choices, description))
}

// String returns the current value.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Set validates and stores the provided value in normalized form.
func (value *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := normalize(candidate)
	for _, choice := range value.choices {
		if normalize(choice) == normalizedCandidate {
			*value.target = normalizedCandidate
			return nil
		}
	}
	return fmt.Errorf(invalidChoiceErrorTemplate, candidate, strings.Join(value.choices, choiceListSeparatorTemplate))
}

// Type names the value kind shown in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeName
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
