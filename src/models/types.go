package models

import "time"

// ExpectedFormat tells the validator how a completion should be judged.
type ExpectedFormat string

const (
	FormatStructured ExpectedFormat = "structured"
	FormatFreeText   ExpectedFormat = "free-text"
)

// GenerationOptions is the per-request generation configuration. It is part of
// the cache key, so field order and json tags matter.
type GenerationOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type CompletionRequest struct {
	Prompt  string            `json:"prompt" binding:"required"`
	Options GenerationOptions `json:"options"`
	Format  ExpectedFormat    `json:"format,omitempty"`
}

type Completion struct {
	Text       string        `json:"text"`
	Provider   string        `json:"provider"`
	Service    string        `json:"service"`
	Tier       string        `json:"tier"`
	Complexity string        `json:"complexity"`
	Score      float64       `json:"score"`
	CacheHit   bool          `json:"cache_hit"`
	Latency    time.Duration `json:"latency"`
	Timestamp  time.Time     `json:"timestamp"`
	Usage      *Usage        `json:"usage,omitempty"`
}

// Usage is an estimate; providers are not asked for exact token counts.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
	Service      string  `json:"service"`
}

// Validation is the verdict of the response validator.
type Validation struct {
	Valid  bool    `json:"valid"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// ESG domain types

type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Type        string   `json:"type"`     // "multiple-choice", "text" or "number"
	Category    string   `json:"category"` // "environmental", "social", "governance", "operational"
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}

type CategoryInsight struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Improvements []string `json:"improvements"`
}

type DetailedAnalysis struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	CategoryInsights struct {
		Environmental CategoryInsight `json:"environmental"`
		Social        CategoryInsight `json:"social"`
		Governance    CategoryInsight `json:"governance"`
	} `json:"categoryInsights"`
}

type ESGReport struct {
	Score              float64          `json:"score"`
	Summary            string           `json:"summary"`
	Suggestions        []string         `json:"suggestions"`
	EnvironmentalScore float64          `json:"environmentalScore"`
	SocialScore        float64          `json:"socialScore"`
	GovernanceScore    float64          `json:"governanceScore"`
	BenchmarkPosition  string           `json:"benchmarkPosition"`
	RiskLevel          string           `json:"riskLevel"`
	ComplianceGaps     []string         `json:"complianceGaps"`
	QuickWins          []string         `json:"quickWins"`
	LongTermGoals      []string         `json:"longTermGoals"`
	DetailedAnalysis   DetailedAnalysis `json:"detailedAnalysis"`
}

// Persistence records

type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	DisplayName         string    `json:"displayName,omitempty"`
	CompanyName         string    `json:"companyName,omitempty"`
	Industry            string    `json:"industry,omitempty"`
	CompanySize         string    `json:"companySize,omitempty"`
	Role                string    `json:"role,omitempty"`
	Regions             []string  `json:"regions,omitempty"`
	FacilitiesCount     *int      `json:"facilitiesCount,omitempty"`
	RevenueUSD          *float64  `json:"revenueUSD,omitempty"`
	ProductionUnits     *float64  `json:"productionUnits,omitempty"`
	SuppliersCount      *int      `json:"suppliersCount,omitempty"`
	PrimaryDataShare    *float64  `json:"primaryDataShare,omitempty"`
	ProductsCount       *int      `json:"productsCount,omitempty"`
	BOMAvailable        *bool     `json:"bomAvailable,omitempty"`
	InternalCarbonPrice *float64  `json:"internalCarbonPrice,omitempty"`
	SBTiCommitted       *bool     `json:"sbtiCommitted,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName         *string   `json:"displayName"`
	CompanyName         *string   `json:"companyName"`
	Industry            *string   `json:"industry"`
	CompanySize         *string   `json:"companySize"`
	Role                *string   `json:"role"`
	Regions             *[]string `json:"regions"`
	FacilitiesCount     *int      `json:"facilitiesCount"`
	RevenueUSD          *float64  `json:"revenueUSD"`
	ProductionUnits     *float64  `json:"productionUnits"`
	SuppliersCount      *int      `json:"suppliersCount"`
	PrimaryDataShare    *float64  `json:"primaryDataShare"`
	ProductsCount       *int      `json:"productsCount"`
	BOMAvailable        *bool     `json:"bomAvailable"`
	InternalCarbonPrice *float64  `json:"internalCarbonPrice"`
	SBTiCommitted       *bool     `json:"sbtiCommitted"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Assessment struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Industry    string         `json:"industry"`
	Responses   map[string]any `json:"responses"`
	CarbonScore *float64       `json:"carbonScore,omitempty"`
	ESGScore    *float64       `json:"esgScore,omitempty"`
	CompletedAt time.Time      `json:"completedAt"`
}

type Report struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"userId"`
	AssessmentID       string      `json:"assessmentId,omitempty"`
	CarbonFootprint    float64     `json:"carbonFootprint"`
	ESGScore           float64     `json:"esgScore"`
	AIReport           *ESGReport  `json:"aiReport"`
	Recommendations    []string    `json:"recommendations"`
	EnvironmentalScore float64     `json:"environmentalScore"`
	SocialScore        float64     `json:"socialScore"`
	GovernanceScore    float64     `json:"governanceScore"`
	RiskLevel          string      `json:"riskLevel"`
	BenchmarkPosition  string      `json:"benchmarkPosition"`
	ComplianceGaps     []string    `json:"complianceGaps"`
	QuickWins          []string    `json:"quickWins"`
	LongTermGoals      []string    `json:"longTermGoals"`
	GeneratedAt        time.Time   `json:"generatedAt"`
	Assessment         *Assessment `json:"assessment,omitempty"`
}

type DeepAnalytics struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"userId"`
	ReportID            string         `json:"reportId,omitempty"`
	DeepReport          map[string]any `json:"deepReport"`
	Scope1Emissions     *float64       `json:"scope1Emissions,omitempty"`
	Scope2Emissions     *float64       `json:"scope2Emissions,omitempty"`
	Scope3Emissions     *float64       `json:"scope3Emissions,omitempty"`
	IntensityPerUnit    *float64       `json:"intensityPerUnit,omitempty"`
	IntensityPerRevenue *float64       `json:"intensityPerRevenue,omitempty"`
	RenewablesShare     *float64       `json:"renewablesShare,omitempty"`
	CircularityScore    *float64       `json:"circularityScore,omitempty"`
	EngagementIndex     *float64       `json:"engagementIndex,omitempty"`
	GeneratedAt         time.Time      `json:"generatedAt"`
}

type Dashboard struct {
	Profile         *User          `json:"profile"`
	Assessments     []Assessment   `json:"assessments"`
	LatestReport    *Report        `json:"latestReport"`
	LatestAnalytics *DeepAnalytics `json:"latestAnalytics"`
}
