package esg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/dispatcher"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

var (
	ErrAssessmentGeneration = errors.New("failed to generate assessment")
	ErrReportGeneration     = errors.New("failed to generate report")
	ErrAnalyticsGeneration  = errors.New("failed to generate deep analytics")
	ErrAnalysisStream       = errors.New("failed to stream analysis")
)

const (
	assessmentQuestions    = 16
	minAssessmentQuestions = 12
	defaultCompanySize     = "medium"
)

var (
	assessmentOptions = models.GenerationOptions{Temperature: 0.7, MaxTokens: 3000}
	reportOptions     = models.GenerationOptions{Temperature: 0.7, MaxTokens: 4000}
	analyticsOptions  = models.GenerationOptions{Temperature: 0.7, MaxTokens: 4000}
	streamOptions     = models.GenerationOptions{Temperature: 0.7, MaxTokens: 2000}

	defaultChoiceOptions = []string{"Yes", "No", "Partially", "Not applicable"}
)

// Generator turns ESG requests into prompts, dispatches them and parses the
// results. Provider errors are logged and replaced by the generic sentinels.
type Generator struct {
	completer models.Completer
	streamer  models.StreamCompleter
	logger    *zap.Logger
	now       func() time.Time
}

func NewGenerator(completer models.Completer, streamer models.StreamCompleter, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer: completer,
		streamer:  streamer,
		logger:    logger,
		now:       time.Now,
	}
}

func (g *Generator) completeStructured(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error) {
	completion, err := g.completer.Complete(ctx, &models.CompletionRequest{
		Prompt:  prompt,
		Options: opts,
		Format:  models.FormatStructured,
	})
	if err != nil {
		return "", err
	}
	return dispatcher.StripCodeFences(completion.Text), nil
}

type rawQuestion struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Options     []string `json:"options"`
	Description string   `json:"description"`
}

func (g *Generator) GenerateAssessment(ctx context.Context, params models.AssessmentParams) ([]models.Question, error) {
	companySize := params.CompanySize
	if companySize == "" {
		companySize = defaultCompanySize
	}

	text, err := g.completeStructured(ctx, assessmentPrompt(params.Industry, companySize, params.Company), assessmentOptions)
	if err != nil {
		g.logger.Error("assessment generation failed", zap.String("industry", params.Industry), zap.Error(err))
		return nil, ErrAssessmentGeneration
	}

	questions, err := parseQuestions(text, g.now())
	if err != nil {
		g.logger.Error("assessment generation failed", zap.String("industry", params.Industry), zap.Error(err))
		return nil, ErrAssessmentGeneration
	}

	return questions, nil
}

// parseQuestions keeps the well-formed items, fills in ids and default
// options, and caps the list.
func parseQuestions(text string, now time.Time) ([]models.Question, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("questions are not a JSON array: %w", err)
	}

	questions := make([]models.Question, 0, assessmentQuestions)
	for _, item := range items {
		var q rawQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			continue
		}
		if q.Question == "" || q.Type == "" || q.Category == "" {
			continue
		}

		idx := len(questions)
		question := models.Question{
			ID:          q.ID,
			Question:    q.Question,
			Type:        q.Type,
			Category:    q.Category,
			Description: q.Description,
		}
		if question.ID == "" {
			question.ID = fmt.Sprintf("q_%d_%d", now.UnixMilli(), idx)
		}
		if q.Type == "multiple-choice" {
			question.Options = q.Options
			if len(question.Options) == 0 {
				question.Options = append([]string(nil), defaultChoiceOptions...)
			}
		}

		questions = append(questions, question)
		if len(questions) == assessmentQuestions {
			break
		}
	}

	if len(questions) < minAssessmentQuestions {
		return nil, fmt.Errorf("insufficient valid questions generated: %d", len(questions))
	}

	return questions, nil
}

func (g *Generator) GenerateReport(ctx context.Context, responses map[string]any) (*models.ESGReport, error) {
	text, err := g.completeStructured(ctx, reportPrompt(responses), reportOptions)
	if err != nil {
		g.logger.Error("report generation failed", zap.Error(err))
		return nil, ErrReportGeneration
	}

	var report models.ESGReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		g.logger.Error("report generation failed", zap.Error(err))
		return nil, ErrReportGeneration
	}

	if report.Score == 0 || report.Summary == "" || report.Suggestions == nil {
		g.logger.Error("report generation failed", zap.String("reason", "invalid report structure"))
		return nil, ErrReportGeneration
	}

	return &report, nil
}

func (g *Generator) GenerateDeepAnalytics(ctx context.Context, params models.DeepAnalyticsParams) (map[string]any, error) {
	prompt := deepAnalyticsPrompt(params.Company, params.LatestReport, params.Responses)

	text, err := g.completeStructured(ctx, prompt, analyticsOptions)
	if err != nil {
		g.logger.Error("deep analytics generation failed", zap.String("user_id", params.UserID), zap.Error(err))
		return nil, ErrAnalyticsGeneration
	}

	var analytics map[string]any
	if err := json.Unmarshal([]byte(text), &analytics); err != nil || len(analytics) == 0 {
		g.logger.Error("deep analytics generation failed", zap.String("user_id", params.UserID), zap.Error(err))
		return nil, ErrAnalyticsGeneration
	}

	return analytics, nil
}

// StreamAnalysis forwards free-text insights to onChunk as they are produced.
func (g *Generator) StreamAnalysis(ctx context.Context, responses map[string]any, onChunk func(string) error) error {
	if err := g.streamer.Stream(ctx, streamPrompt(responses), streamOptions, onChunk); err != nil {
		g.logger.Error("analysis stream failed", zap.Error(err))
		return ErrAnalysisStream
	}
	return nil
}
