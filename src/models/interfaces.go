package models

import (
	"context"
)

// TextBackend is one generation backend behind a provider descriptor.
type TextBackend interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// StreamingBackend is a TextBackend that can also emit chunks as they arrive.
type StreamingBackend interface {
	TextBackend
	Stream(ctx context.Context, prompt string, opts GenerationOptions, onChunk func(string) error) error
}

// Completer produces validated completions.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// StreamCompleter streams unvalidated text from the first provider that starts.
type StreamCompleter interface {
	Stream(ctx context.Context, prompt string, opts GenerationOptions, onChunk func(string) error) error
}

// CompletionCache defines the interface for dispatcher cache operations.
// Get returns (nil, nil) on a miss.
type CompletionCache interface {
	Get(ctx context.Context, key string) (*Completion, error)
	Set(ctx context.Context, key string, completion *Completion) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update *ProfileUpdate) (*User, error)
}

type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, assessment *Assessment) error
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	// ListAssessments returns newest first; limit <= 0 means no limit.
	ListAssessments(ctx context.Context, userID string, limit int) ([]Assessment, error)
}

type ReportRepository interface {
	CreateReport(ctx context.Context, report *Report) error
	ListReports(ctx context.Context, userID string) ([]Report, error)
	// LatestReport returns (nil, nil) when the user has no report yet.
	LatestReport(ctx context.Context, userID string) (*Report, error)
}

type AnalyticsRepository interface {
	CreateAnalytics(ctx context.Context, analytics *DeepAnalytics) error
	LatestAnalytics(ctx context.Context, userID string) (*DeepAnalytics, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type AssessmentParams struct {
	Industry    string         `json:"industry" binding:"required"`
	CompanySize string         `json:"companySize,omitempty"`
	Company     map[string]any `json:"company,omitempty"`
}

type DeepAnalyticsParams struct {
	UserID       string         `json:"-"`
	ReportID     string         `json:"reportId,omitempty"`
	Company      map[string]any `json:"company,omitempty"`
	LatestReport map[string]any `json:"latestReport,omitempty"`
	Responses    map[string]any `json:"responses,omitempty"`
}

// ESGGenerator is the set of AI-backed operations exposed to handlers.
type ESGGenerator interface {
	GenerateAssessment(ctx context.Context, params AssessmentParams) ([]Question, error)
	GenerateReport(ctx context.Context, responses map[string]any) (*ESGReport, error)
	GenerateDeepAnalytics(ctx context.Context, params DeepAnalyticsParams) (map[string]any, error)
	StreamAnalysis(ctx context.Context, responses map[string]any, onChunk func(string) error) error
}
