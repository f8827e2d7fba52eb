package content

import (
	"errors"
	"fmt"
	"strings"

	"jeopardy-board/internal/domain"
)

// MaxQuestionsPerCategory is the board height; longer categories still load.
const MaxQuestionsPerCategory = 5

var knownLanguages = map[string]bool{"en": true, "de": true, "fr": true, "es": true, "it": true}

// Validate checks a round for structural problems. Problems that make the
// round unplayable are joined into an error wrapping domain.ErrInvalidRound;
// cosmetic ones are returned as warnings.
func Validate(round domain.Round) (warnings []string, err error) {
	var problems []string

	if strings.TrimSpace(round.ID) == "" {
		problems = append(problems, "round id is required")
	}
	if len(round.Categories) == 0 {
		problems = append(problems, "round must have at least one category")
	}
	for ci, cat := range round.Categories {
		field := fmt.Sprintf("categories[%d]", ci)
		if strings.TrimSpace(cat.Name) == "" {
			problems = append(problems, field+": name is required")
		}
		if len(cat.Questions) == 0 {
			problems = append(problems, field+": category has no questions")
		}
		if len(cat.Questions) > MaxQuestionsPerCategory {
			warnings = append(warnings, fmt.Sprintf("%s: %d questions, only %d fit the board", field, len(cat.Questions), MaxQuestionsPerCategory))
		}
		if cat.Lang != "" && !knownLanguages[cat.Lang] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown language %q", field, cat.Lang))
		}
		for qi, q := range cat.Questions {
			qf := fmt.Sprintf("%s.questions[%d]", field, qi)
			if strings.TrimSpace(q.Prompt) == "" {
				problems = append(problems, qf+": question text is required")
			}
			hasAnswer := strings.TrimSpace(q.Answer) != ""
			hasImage := strings.TrimSpace(q.Image) != ""
			switch {
			case !hasAnswer && !hasImage:
				problems = append(problems, qf+": needs an answer or an image")
			case hasAnswer && hasImage:
				problems = append(problems, qf+": has both answer and image")
			}
			if q.Value < 0 {
				problems = append(problems, qf+": value must be positive")
			}
		}
	}

	if len(problems) == 0 {
		return warnings, nil
	}
	errs := make([]error, 0, len(problems)+1)
	errs = append(errs, domain.ErrInvalidRound)
	for _, p := range problems {
		errs = append(errs, errors.New(p))
	}
	return warnings, errors.Join(errs...)
}
