package coach

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
)

const (
	DefaultAPIURL  = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second
	userAgent      = "spigell/interview-coach"

	generateQuestionsPath = "/generate_questions"
	evaluateAnswerPath    = "/evaluate_answer"
	forceEndPath          = "/force_end_interview"

	defaultMaxLogLength = 200
)

// Client talks to the interview coach HTTP service.
type Client struct {
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	MaxLogLength int
}

func New(logger *zap.Logger, apiURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	if apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/"); apiURL == "" {
		apiURL = DefaultAPIURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		logger:       logger,
		APIURL:       apiURL,
		HTTPClient:   &http.Client{Timeout: timeout},
		UserAgent:    userAgent,
		MaxLogLength: defaultMaxLogLength,
	}
}

// GenerateQuestions uploads the resume together with the job role and returns the raw
// questions text.
func (c *Client) GenerateQuestions(ctx context.Context, jobRole string, resume *interview.Resume) (string, error) {
	if resume == nil {
		return "", interview.ErrMissingInput
	}

	data, err := c.postMultipart(ctx, c.APIURL+generateQuestionsPath,
		map[string]string{"job_role": jobRole},
		[]filePart{{field: "resume", name: resume.Name, contentType: "application/pdf", data: resume.Data}},
	)
	if err != nil {
		return "", err
	}

	var out questionsResponse
	if err := decodeShape(data, &out, "questions"); err != nil {
		return "", err
	}

	if strings.TrimSpace(out.Questions) == "" {
		return "", fmt.Errorf("%w: backend response did not contain valid questions text", interview.ErrInvalidResponseShape)
	}

	return out.Questions, nil
}

func (c *Client) EvaluateAnswer(ctx context.Context, req *interview.EvaluationRequest) (*interview.Evaluation, error) {
	data, err := c.postJSON(ctx, c.APIURL+evaluateAnswerPath, req)
	if err != nil {
		return nil, err
	}

	var out evaluationResponse
	if err := decodeShape(data, &out, "evaluation", "interview_ended"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(out.Evaluation) == "" {
		return nil, fmt.Errorf("%w: evaluation is empty", interview.ErrInvalidResponseShape)
	}

	return &interview.Evaluation{Text: out.Evaluation, Ended: out.InterviewEnded}, nil
}

func (c *Client) ForceEnd(ctx context.Context, req *interview.SummaryRequest) (string, error) {
	data, err := c.postJSON(ctx, c.APIURL+forceEndPath, req)
	if err != nil {
		return "", err
	}

	var out summaryResponse
	if err := decodeShape(data, &out, "summary"); err != nil {
		return "", err
	}

	if strings.TrimSpace(out.Summary) == "" {
		return "", fmt.Errorf("%w: summary is empty", interview.ErrInvalidResponseShape)
	}

	return out.Summary, nil
}
