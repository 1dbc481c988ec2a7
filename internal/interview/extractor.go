package interview

import (
	"regexp"
	"strings"
)

// minQuestionLength drops fragments such as a lone "1." left by the generator.
const minQuestionLength = 6

var questionLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.*)$`)

// ExtractQuestions turns the raw text returned by the question generator into an
// ordered list of questions. Only lines starting with a number followed by "." or ")"
// are considered; the numbering itself is ignored, only the order of appearance matters.
func ExtractQuestions(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	matched := 0
	questions := make([]string, 0)

	for _, line := range strings.Split(raw, "\n") {
		groups := questionLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if groups == nil {
			continue
		}
		matched++

		question := strings.TrimSpace(groups[1])
		if len([]rune(question)) < minQuestionLength {
			continue
		}
		questions = append(questions, question)
	}

	if matched == 0 {
		return nil, &NoQuestionsError{Reason: "Could not parse any numbered questions from the backend response."}
	}

	if len(questions) == 0 {
		return nil, &NoQuestionsError{Reason: "No valid questions were found after parsing."}
	}

	return questions, nil
}
