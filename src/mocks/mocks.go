package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// MockCompleter implements models.Completer and models.StreamCompleter
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req *models.CompletionRequest) (*models.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Completion), args.Error(1)
}

// Stream emits the chunks passed as the first return value before returning the error.
func (m *MockCompleter) Stream(ctx context.Context, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	args := m.Called(ctx, prompt, opts, onChunk)
	if chunks, ok := args.Get(0).([]string); ok {
		for _, chunk := range chunks {
			if err := onChunk(chunk); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockCache implements models.CompletionCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (*models.Completion, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Completion), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, completion *models.Completion) error {
	args := m.Called(ctx, key, completion)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockESGGenerator implements models.ESGGenerator
type MockESGGenerator struct {
	mock.Mock
}

func (m *MockESGGenerator) GenerateAssessment(ctx context.Context, params models.AssessmentParams) ([]models.Question, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockESGGenerator) GenerateReport(ctx context.Context, responses map[string]any) (*models.ESGReport, error) {
	args := m.Called(ctx, responses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ESGReport), args.Error(1)
}

func (m *MockESGGenerator) GenerateDeepAnalytics(ctx context.Context, params models.DeepAnalyticsParams) (map[string]any, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockESGGenerator) StreamAnalysis(ctx context.Context, responses map[string]any, onChunk func(string) error) error {
	args := m.Called(ctx, responses, onChunk)
	if chunks, ok := args.Get(0).([]string); ok {
		for _, chunk := range chunks {
			if err := onChunk(chunk); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockRepository implements the user, assessment, report and analytics repositories
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateAssessment(ctx context.Context, assessment *models.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockRepository) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockRepository) ListAssessments(ctx context.Context, userID string, limit int) ([]models.Assessment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Assessment), args.Error(1)
}

func (m *MockRepository) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRepository) ListReports(ctx context.Context, userID string) ([]models.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockRepository) LatestReport(ctx context.Context, userID string) (*models.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockRepository) CreateAnalytics(ctx context.Context, analytics *models.DeepAnalytics) error {
	args := m.Called(ctx, analytics)
	return args.Error(0)
}

func (m *MockRepository) LatestAnalytics(ctx context.Context, userID string) (*models.DeepAnalytics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeepAnalytics), args.Error(1)
}

// MockHealthChecker implements models.HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
