package services

import (
	"regexp"
	"slices"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var refusalPatterns = regexp.MustCompile(`(?i)(` +
	`i don'?t know|i do not know|` +
	`i cannot help|i can'?t help|` +
	`not mentioned in the documentation|` +
	`not mentioned in the provided|` +
	`no information available|` +
	`i don'?t have (enough )?information|` +
	`i do not have (enough )?information|` +
	`cannot find|can'?t find|` +
	`unable to (find|answer|provide)|` +
	`no relevant (information|data|documents)|` +
	`the (documents|documentation) (doesn'?t|does not|do not) (mention|contain|include)` +
	`)`)

// Evaluator raises informational flags on generated answers.
type Evaluator struct {
	internalPrefixes []string
}

// NewEvaluator creates an evaluator. Sources whose document name starts with
// one of internalPrefixes are treated as internal.
func NewEvaluator(internalPrefixes []string) *Evaluator {
	return &Evaluator{internalPrefixes: slices.Clone(internalPrefixes)}
}

// Evaluate returns the flags for one answer, in a fixed order:
// no_context, refusal, internal_data_leak. The result is never nil.
func (e *Evaluator) Evaluate(
	answer string, chunksRetrieved int, sources []domain.Source, c domain.Classification,
) []string {
	flags := []string{}
	refused := refusalPatterns.MatchString(answer)

	if chunksRetrieved == 0 && !refused {
		flags = append(flags, domain.FlagNoContext)
	}
	if refused {
		flags = append(flags, domain.FlagRefusal)
	}
	if c == domain.ClassificationSimple && e.anyInternal(sources) {
		flags = append(flags, domain.FlagInternalDataLeak)
	}
	return flags
}

// IsInternal reports whether a document name carries an internal prefix.
func (e *Evaluator) IsInternal(document string) bool {
	for _, prefix := range e.internalPrefixes {
		if prefix != "" && strings.HasPrefix(document, prefix) {
			return true
		}
	}
	return false
}

func (e *Evaluator) anyInternal(sources []domain.Source) bool {
	for _, src := range sources {
		if e.IsInternal(src.Document) {
			return true
		}
	}
	return false
}
