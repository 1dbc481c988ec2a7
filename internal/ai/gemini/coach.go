package gemini

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	providerName = "gemini"
	pdfMIMEType  = "application/pdf"

	questionCount     = 5
	recentMessages    = 10
	messagePreviewLen = 200
	defaultScore      = "7"

	defaultFeedback     = "Thank you for your response. Let me ask you more about this topic."
	defaultNextQuestion = "Can you tell me more about your experience with this technology?"
	emptyFeedback       = "Thank you for your response. I'd like to explore this topic further."
	emptyNextQuestion   = "Can you provide more specific details about the challenges you faced and how you overcame them?"
	fallbackFeedback    = "Thank you for sharing your experience with me."
	fallbackQuestion    = "Let's move on to discuss another aspect of your background. What other projects are you proud of?"
	fallbackSummary     = "Thank you for taking the time to interview with us today. Based on our conversation, you've shown good technical knowledge and communication skills. Our team will review your responses and be in touch regarding next steps. Best of luck with your job search!"
)

//go:embed prompts/*.md
var promptFS embed.FS

var (
	scorePattern    = regexp.MustCompile(`(?i)SCORE:\s*(\d+)`)
	feedbackPattern = regexp.MustCompile(`(?is)FEEDBACK:\s*(.*?)NEXT_QUESTION:`)
	questionPattern = regexp.MustCompile(`(?is)NEXT_QUESTION:\s*(.*)$`)

	endPhrases = []string{
		"i'm done", "we're done", "that's it", "i think we're finished",
		"let's end", "let's finish", "let's conclude", "i'd like to end",
		"can we finish", "i want to stop", "no more questions", "let's wrap up",
		"i think that's enough", "that concludes", "i'm ready to finish",
	}
	endWords = []string{"done", "finished", "end", "finish", "thanks", "thank you"}
)

type textGenerator interface {
	GenerateContent(ctx context.Context, prompt string, attachments ...*genai.Part) (string, error)
	Model() string
}

// Coach runs the interview services in-process on top of Gemini. Generation problems
// are never surfaced to the candidate: every operation falls back to canned text.
type Coach struct {
	generator textGenerator
	logger    *zap.Logger

	// MaxLogLength limits model output quoted in logs.
	MaxLogLength int
}

var _ interview.Backend = (*Coach)(nil)

func NewCoach(generator textGenerator, log *zap.Logger) *Coach {
	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Coach{
		generator:    generator,
		logger:       logger.WithAIFields(log, providerName, model),
		MaxLogLength: messagePreviewLen,
	}
}

// GenerateQuestions returns up to five numbered questions, one per line.
func (c *Coach) GenerateQuestions(ctx context.Context, jobRole string, resume *interview.Resume) (string, error) {
	if strings.TrimSpace(jobRole) == "" || resume == nil || len(resume.Data) == 0 {
		return "", interview.ErrMissingInput
	}

	prompt, err := renderPrompt("questions.md", map[string]string{"JOB_ROLE": jobRole})
	if err != nil {
		return "", err
	}

	raw, err := c.generator.GenerateContent(ctx, prompt, genai.NewPartFromBytes(resume.Data, pdfMIMEType))
	if err != nil {
		c.logger.Warn("question generation failed, using fallback questions", zap.Error(err))
		return numbered(fallbackQuestions(jobRole)), nil
	}

	questions, err := interview.ExtractQuestions(raw)
	if err != nil {
		c.logger.Warn("could not parse generated questions, using fallback questions",
			zap.Error(err),
			zap.String("response", utils.TruncateForLog(raw, c.MaxLogLength)),
		)
		return numbered(fallbackQuestions(jobRole)), nil
	}

	if len(questions) > questionCount {
		questions = questions[:questionCount]
	}

	c.logger.Debug("questions generated", zap.Int("count", len(questions)))
	return numbered(questions), nil
}

// EvaluateAnswer scores the answer and proposes a follow-up question. An answer that
// asks to stop the interview is answered with the closing summary instead.
func (c *Coach) EvaluateAnswer(ctx context.Context, req *interview.EvaluationRequest) (*interview.Evaluation, error) {
	if req == nil {
		req = &interview.EvaluationRequest{}
	}

	if WantsToEnd(req.Answer) {
		c.logger.Info("candidate asked to end the interview")
		summary, err := c.ForceEnd(ctx, &interview.SummaryRequest{History: req.History, JobRole: req.JobRole})
		if err != nil {
			return nil, err
		}
		return &interview.Evaluation{Text: summary, Ended: true}, nil
	}

	prompt, err := renderPrompt("evaluation.md", map[string]string{
		"JOB_ROLE": req.JobRole,
		"QUESTION": req.Question,
		"ANSWER":   req.Answer,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if errors.Is(err, ErrEmptyOutput) {
		c.logger.Warn("model returned no evaluation, asking for details")
		return &interview.Evaluation{Text: FormatEvaluation(defaultScore, emptyFeedback, emptyNextQuestion)}, nil
	}
	if err != nil {
		c.logger.Warn("answer evaluation failed, using fallback evaluation", zap.Error(err))
		return &interview.Evaluation{Text: FormatEvaluation(defaultScore, fallbackFeedback, fallbackQuestion)}, nil
	}

	c.logger.Debug("evaluation generated", zap.String("response", utils.TruncateForLog(raw, c.MaxLogLength)))
	return &interview.Evaluation{Text: ParseEvaluation(raw)}, nil
}

// ForceEnd writes a closing message for the interview.
func (c *Coach) ForceEnd(ctx context.Context, req *interview.SummaryRequest) (string, error) {
	if req == nil {
		req = &interview.SummaryRequest{}
	}

	prompt, err := renderPrompt("summary.md", map[string]string{
		"JOB_ROLE":        req.JobRole,
		"QUESTIONS_ASKED": strconv.Itoa(CountQuestionsAsked(req.History)),
		"CONVERSATION":    recentConversation(req.History),
	})
	if err != nil {
		return "", err
	}

	summary, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		c.logger.Warn("summary generation failed, using fallback summary", zap.Error(err))
		summary = fallbackSummary
	}

	return utils.CollapseLines(summary), nil
}

// WantsToEnd reports whether the candidate's reply is a request to finish.
func WantsToEnd(answer string) bool {
	lower := strings.ToLower(strings.TrimSpace(answer))
	if lower == "" {
		return false
	}

	for _, phrase := range endPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	if len(strings.Fields(lower)) > 3 {
		return false
	}

	for _, word := range endWords {
		if strings.Contains(lower, word) {
			return true
		}
	}

	return false
}

// CountQuestionsAsked counts question marks in the interviewer's messages.
func CountQuestionsAsked(history []interview.Message) int {
	count := 0
	for _, msg := range history {
		if msg.Role == interview.RoleBot {
			count += strings.Count(msg.Content, "?")
		}
	}
	return count
}

// ParseEvaluation extracts SCORE, FEEDBACK and NEXT_QUESTION from a model answer,
// substituting defaults for missing parts.
func ParseEvaluation(raw string) string {
	score := defaultScore
	if m := scorePattern.FindStringSubmatch(raw); m != nil {
		score = m[1]
	}

	feedback := defaultFeedback
	if m := feedbackPattern.FindStringSubmatch(raw); m != nil {
		feedback = utils.CollapseLines(m[1])
	}

	next := defaultNextQuestion
	if m := questionPattern.FindStringSubmatch(raw); m != nil {
		next = utils.CollapseLines(m[1])
	}

	return FormatEvaluation(score, feedback, next)
}

func FormatEvaluation(score, feedback, nextQuestion string) string {
	score = strings.TrimSpace(score)
	if !strings.HasSuffix(score, "/10") {
		if isDigits(score) {
			score += "/10"
		} else {
			score = defaultScore + "/10"
		}
	}

	return fmt.Sprintf("**Score:** %s\n\n**Feedback:** %s\n\n**Next Question:** %s",
		score, strings.TrimSpace(feedback), strings.TrimSpace(nextQuestion))
}

func fallbackQuestions(jobRole string) []string {
	return []string{
		"Tell me about your most challenging project and how you solved the main technical problems.",
		"Describe a specific technology from your resume and how you've applied it in a real project.",
		"Walk me through your approach when debugging a complex issue.",
		"Explain a technical concept from one of your projects in simple terms.",
		fmt.Sprintf("What aspects of this %s role align with your experience and interests?", strings.TrimSpace(jobRole)),
	}
}

func numbered(questions []string) string {
	lines := make([]string, 0, len(questions))
	for i, q := range questions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, q))
	}
	return strings.Join(lines, "\n")
}

func recentConversation(history []interview.Message) string {
	if len(history) > recentMessages {
		history = history[len(history)-recentMessages:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		role := "Candidate"
		if msg.Role == interview.RoleBot {
			role = "Interviewer"
		}

		content := msg.Content
		if runes := []rune(content); len(runes) > messagePreviewLen {
			content = string(runes[:messagePreviewLen]) + "..."
		}

		lines = append(lines, role+": "+content)
	}

	return strings.Join(lines, "\n")
}

func renderPrompt(name string, values map[string]string) (string, error) {
	data, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}

	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", strings.TrimSpace(value))
	}

	return strings.NewReplacer(pairs...).Replace(string(data)), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
