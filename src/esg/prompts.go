package esg

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const assessmentPromptTemplate = `You are an expert ESG sustainability consultant. Generate exactly 16 comprehensive sustainability assessment questions for a %s-sized %s company.

Company Context: %s

REQUIREMENTS:
- 4 Environmental questions (energy, emissions, waste, resources)
- 4 Social questions (employees, diversity, community, safety)
- 4 Governance questions (policies, reporting, compliance, leadership)
- 4 Operational questions (supply chain, products, facilities, data)
- 70%% multiple-choice (exactly 4 options), 20%% text, 10%% number
- Industry-specific and measurable
- Enable calculation of Scope 1, 2, 3 emissions
- Support intensity metrics (per unit, per revenue)

Return ONLY a valid JSON array with this exact structure:
[
  {
    "id": "unique_id",
    "question": "Question text",
    "type": "multiple-choice|text|number",
    "category": "environmental|social|governance|operational",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "description": "Optional helper text"
  }
]`

const reportPromptTemplate = `You are an expert ESG sustainability consultant. Analyze these questionnaire responses and generate a comprehensive business sustainability report.

RESPONSES:
%s

ANALYSIS REQUIREMENTS:
- Calculate accurate ESG scores (0-100) for Environmental, Social, Governance
- Provide detailed feedback on what caused high/low scores
- Explain the impact of each answer category
- Include specific, actionable improvement strategies
- Consider industry best practices and benchmarks
- Focus on ROI and business value

Return ONLY valid JSON with this exact structure:
{
  "score": 75,
  "environmentalScore": 82,
  "socialScore": 68,
  "governanceScore": 75,
  "summary": "2-3 sentence professional summary",
  "suggestions": ["5 specific actionable recommendations"],
  "benchmarkPosition": "Above Average|Average|Below Average",
  "riskLevel": "Low|Medium|High",
  "complianceGaps": ["2-3 compliance gaps"],
  "quickWins": ["3 quick wins"],
  "longTermGoals": ["2 long-term goals"],
  "detailedAnalysis": {
    "strengths": ["2-3 key strengths"],
    "weaknesses": ["2-3 key weaknesses"],
    "categoryInsights": {
      "environmental": {"score": 82, "feedback": "Detailed feedback", "improvements": ["2-3 improvements"]},
      "social": {"score": 68, "feedback": "Detailed feedback", "improvements": ["2-3 improvements"]},
      "governance": {"score": 75, "feedback": "Detailed feedback", "improvements": ["2-3 improvements"]}
    }
  }
}`

const deepAnalyticsPromptTemplate = `You are an enterprise sustainability analytics expert. Generate deep analytics for this company:

Company: %s
Latest ESG Score: %s
Responses: %s

Generate comprehensive analytics covering:
1. Emissions breakdown (Scope 1, 2, 3)
2. Intensity metrics (per unit, per revenue)
3. Supply chain analysis
4. Targets & planning (SBTi readiness, carbon pricing)
5. Compliance & reporting readiness
6. Energy & offsets quality
7. Nature & circularity
8. People & culture metrics

Return valid JSON with detailed metrics and insights. Use these top-level keys where the data allows:
"emissions" {"scope1","scope2","scope3"}, "intensity" {"perUnit","perRevenue"},
"energy" {"renewablesShare"}, "circularity" {"score"}, "people" {"engagementIndex"}.`

const streamPromptPrefix = "Analyze these sustainability responses and provide real-time insights:\n\n"

func assessmentPrompt(industry, companySize string, company map[string]any) string {
	context := "Not provided"
	if len(company) > 0 {
		context = toJSON(company)
	}
	return fmt.Sprintf(assessmentPromptTemplate, companySize, industry, context)
}

func reportPrompt(responses map[string]any) string {
	return fmt.Sprintf(reportPromptTemplate, renderResponses(responses))
}

func deepAnalyticsPrompt(company, latestReport, responses map[string]any) string {
	score := "N/A"
	if v, ok := latestReport["esgScore"]; ok && v != nil {
		score = formatAnswer(v)
	}
	return fmt.Sprintf(deepAnalyticsPromptTemplate, toJSON(company), score, toJSON(responses))
}

func streamPrompt(responses map[string]any) string {
	return streamPromptPrefix + renderResponses(responses)
}

// renderResponses formats answers as "Q: ...\nA: ..." blocks ordered by question.
func renderResponses(responses map[string]any) string {
	questions := make([]string, 0, len(responses))
	for q := range responses {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	blocks := make([]string, 0, len(questions))
	for _, q := range questions {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", q, formatAnswer(responses[q])))
	}
	return strings.Join(blocks, "\n\n")
}

func formatAnswer(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case map[string]any, []any:
		return toJSON(val)
	default:
		return fmt.Sprint(val)
	}
}

func toJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
