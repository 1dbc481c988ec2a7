package coach

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/interview-coach/internal/interview"
)

type questionsResponse struct {
	Questions string `mapstructure:"questions"`
}

type evaluationResponse struct {
	Evaluation     string `mapstructure:"evaluation"`
	InterviewEnded bool   `mapstructure:"interview_ended"`
}

type summaryResponse struct {
	Summary string `mapstructure:"summary"`
}

type errorResponse struct {
	Detail string `mapstructure:"detail"`
}

// decodeShape decodes a generic JSON object into target. Extra keys are allowed,
// required keys must be present and every decoded key must have the expected type.
func decodeShape(data map[string]any, target any, required ...string) error {
	for _, key := range required {
		if v, ok := data[key]; !ok || v == nil {
			return fmt.Errorf("%w: missing %q", interview.ErrInvalidResponseShape, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("%w: %w", interview.ErrInvalidResponseShape, err)
	}

	return nil
}

// detailOf extracts the "detail" text the services put in error bodies.
func detailOf(data map[string]any) string {
	var out errorResponse
	if err := mapstructure.Decode(data, &out); err != nil {
		return ""
	}
	return out.Detail
}
