package classify

import (
	"fmt"

	"github.com/abramin/wattson/internal/domain"
)

// ParsedIndicator is one indicator mention extracted from a turn. Any field
// the classifier could not determine is nil; a nil Indicator with a filled
// time means the turn carried only a time expression.
type ParsedIndicator struct {
	Indicator  *string          `json:"indicator"`
	TimeString *string          `json:"timeString"`
	TimeType   *domain.TimeType `json:"timeType"`
}

// HasTime reports whether both halves of the time slot were extracted.
func (p ParsedIndicator) HasTime() bool {
	return p.TimeString != nil && *p.TimeString != "" && p.TimeType != nil
}

// ParsedTurn is the structured output of classifying one user turn.
type ParsedTurn struct {
	Intents    []domain.IntentName `json:"intent_list"`
	Indicators []ParsedIndicator   `json:"indicators"`
}

// Primary returns the first intent, or clarify when the list is empty.
func (t *ParsedTurn) Primary() domain.IntentName {
	if len(t.Intents) == 0 {
		return domain.IntentClarify
	}
	return t.Intents[0]
}

// ParseErrorCode enumerates classification failure reasons.
type ParseErrorCode string

const (
	ErrCodeInvalidOutputFormat ParseErrorCode = "INVALID_OUTPUT_FORMAT"
	ErrCodeUnknownIntent       ParseErrorCode = "UNKNOWN_INTENT"
)

// ParseError is returned when the classifier response cannot be turned into
// a valid ParsedTurn.
type ParseError struct {
	Code    ParseErrorCode `json:"code"`
	Message string         `json:"message"`
}

func (e *ParseError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// validateTurn checks the extracted turn against the closed enums.
func validateTurn(t *ParsedTurn) *ParseError {
	if len(t.Intents) == 0 {
		return &ParseError{
			Code:    ErrCodeInvalidOutputFormat,
			Message: "empty intent_list",
		}
	}
	for _, intent := range t.Intents {
		if !domain.IsValidIntent(intent) {
			return &ParseError{
				Code:    ErrCodeUnknownIntent,
				Message: fmt.Sprintf("unknown intent: %s", intent),
			}
		}
	}
	for _, ind := range t.Indicators {
		if ind.TimeType != nil && !domain.IsValidTimeType(*ind.TimeType) {
			return &ParseError{
				Code:    ErrCodeInvalidOutputFormat,
				Message: fmt.Sprintf("unknown timeType: %s", *ind.TimeType),
			}
		}
	}
	return nil
}
