package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/louisbranch/livepoll/internal/platform/errors"
)

// MaxTimeLimitSeconds bounds a question's countdown to one day.
const MaxTimeLimitSeconds = 24 * 60 * 60

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("timelimit", func(fl validator.FieldLevel) bool {
		seconds := fl.Field().Int()
		return seconds > 0 && seconds <= MaxTimeLimitSeconds
	})
	return v
}

// QuestionSpec is a teacher's request to ask a question.
type QuestionSpec struct {
	Text             string
	Options          []string `validate:"min=1,unique,dive,required"`
	TimeLimitSeconds int      `validate:"timelimit"`
}

// Validate checks the spec, trimming option labels first. It returns an
// ErrInvalidQuestion-coded error naming the failing field.
func (s QuestionSpec) Validate() error {
	normalized := s.normalized()
	if err := validate.Struct(normalized); err != nil {
		field := "question"
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			field = validationErrs[0].Field()
		}
		return &apperrors.Error{
			Code:     apperrors.CodeInvalidQuestion,
			Message:  "invalid question",
			Metadata: map[string]string{"field": field},
			Cause:    err,
		}
	}
	return nil
}

func (s QuestionSpec) normalized() QuestionSpec {
	options := make([]string, len(s.Options))
	for i, option := range s.Options {
		options[i] = strings.TrimSpace(option)
	}
	return QuestionSpec{
		Text:             strings.TrimSpace(s.Text),
		Options:          options,
		TimeLimitSeconds: s.TimeLimitSeconds,
	}
}

// Question is an asked question. Values are immutable once created; Options
// is never shared with the spec it came from.
type Question struct {
	Round            uint64
	Text             string
	Options          []string
	TimeLimitSeconds int
}

func newQuestion(round uint64, spec QuestionSpec) Question {
	normalized := spec.normalized()
	return Question{
		Round:            round,
		Text:             normalized.Text,
		Options:          slices.Clone(normalized.Options),
		TimeLimitSeconds: normalized.TimeLimitSeconds,
	}
}

// TimeLimit returns the countdown as a duration.
func (q Question) TimeLimit() time.Duration {
	return time.Duration(q.TimeLimitSeconds) * time.Second
}
