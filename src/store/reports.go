package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const reportColumns = `r.id, r.user_id, r.assessment_id, r.carbon_footprint, r.esg_score, r.ai_report,
	r.recommendations, r.environmental_score, r.social_score, r.governance_score, r.risk_level,
	r.benchmark_position, r.compliance_gaps, r.quick_wins, r.long_term_goals, r.generated_at,
	a.id, a.user_id, a.industry, a.responses, a.carbon_score, a.esg_score, a.completed_at`

const reportFrom = ` FROM reports r LEFT JOIN assessments a ON a.id = r.assessment_id`

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	var aiReport sql.NullString
	if r.AIReport != nil {
		encoded, err := marshalJSON(r.AIReport)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		aiReport = sql.NullString{String: encoded, Valid: true}
	}

	lists := make([]string, 0, 4)
	for _, list := range [][]string{r.Recommendations, r.ComplianceGaps, r.QuickWins, r.LongTermGoals} {
		if list == nil {
			list = []string{}
		}
		encoded, err := marshalJSON(list)
		if err != nil {
			return fmt.Errorf("failed to encode report lists: %w", err)
		}
		lists = append(lists, encoded)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO reports (
		id, user_id, assessment_id, carbon_footprint, esg_score, ai_report, recommendations,
		environmental_score, social_score, governance_score, risk_level, benchmark_position,
		compliance_gaps, quick_wins, long_term_goals, generated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, nullString(r.AssessmentID), r.CarbonFootprint, r.ESGScore, aiReport, lists[0],
		r.EnvironmentalScore, r.SocialScore, r.GovernanceScore, r.RiskLevel, r.BenchmarkPosition,
		lists[1], lists[2], lists[3], r.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// ListReports returns the user's reports newest first, each with its assessment.
func (s *Store) ListReports(ctx context.Context, userID string) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+reportFrom+
		` WHERE r.user_id = ? ORDER BY r.generated_at DESC, r.rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}

func (s *Store) LatestReport(ctx context.Context, userID string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+reportFrom+
		` WHERE r.user_id = ? ORDER BY r.generated_at DESC, r.rowid DESC LIMIT 1`, userID)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var assessmentID, aiReport sql.NullString
	var recommendations, gaps, wins, goals string

	// columns of the joined assessment, all NULL when there is none
	var aID, aUserID, aIndustry, aResponses sql.NullString
	var aCarbon, aESG *float64
	var aCompleted sql.NullTime

	err := row.Scan(
		&r.ID, &r.UserID, &assessmentID, &r.CarbonFootprint, &r.ESGScore, &aiReport,
		&recommendations, &r.EnvironmentalScore, &r.SocialScore, &r.GovernanceScore, &r.RiskLevel,
		&r.BenchmarkPosition, &gaps, &wins, &goals, &r.GeneratedAt,
		&aID, &aUserID, &aIndustry, &aResponses, &aCarbon, &aESG, &aCompleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	r.AssessmentID = assessmentID.String
	if aiReport.Valid {
		r.AIReport = &models.ESGReport{}
		if err := json.Unmarshal([]byte(aiReport.String), r.AIReport); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
	}

	for _, field := range []struct {
		raw  string
		dest *[]string
	}{
		{recommendations, &r.Recommendations},
		{gaps, &r.ComplianceGaps},
		{wins, &r.QuickWins},
		{goals, &r.LongTermGoals},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.dest); err != nil {
			return nil, fmt.Errorf("failed to decode report lists: %w", err)
		}
	}

	if aID.Valid {
		r.Assessment = &models.Assessment{
			ID:          aID.String,
			UserID:      aUserID.String,
			Industry:    aIndustry.String,
			CarbonScore: aCarbon,
			ESGScore:    aESG,
			CompletedAt: aCompleted.Time,
		}
		if err := json.Unmarshal([]byte(aResponses.String), &r.Assessment.Responses); err != nil {
			return nil, fmt.Errorf("failed to decode responses: %w", err)
		}
	}

	return &r, nil
}
