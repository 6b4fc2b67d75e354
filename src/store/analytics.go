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

const analyticsColumns = `id, user_id, report_id, deep_report, scope1_emissions, scope2_emissions,
	scope3_emissions, intensity_per_unit, intensity_per_revenue, renewables_share,
	circularity_score, engagement_index, generated_at`

func (s *Store) CreateAnalytics(ctx context.Context, d *models.DeepAnalytics) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now().UTC()
	}

	report, err := marshalJSON(d.DeepReport)
	if err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO deep_analytics (`+analyticsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, nullString(d.ReportID), report, d.Scope1Emissions, d.Scope2Emissions,
		d.Scope3Emissions, d.IntensityPerUnit, d.IntensityPerRevenue, d.RenewablesShare,
		d.CircularityScore, d.EngagementIndex, d.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analytics: %w", err)
	}

	return nil
}

// LatestAnalytics returns (nil, nil) when the user has none.
func (s *Store) LatestAnalytics(ctx context.Context, userID string) (*models.DeepAnalytics, error) {
	var d models.DeepAnalytics
	var reportID sql.NullString
	var report string

	err := s.db.QueryRowContext(ctx, `SELECT `+analyticsColumns+` FROM deep_analytics
		WHERE user_id = ? ORDER BY generated_at DESC, rowid DESC LIMIT 1`, userID,
	).Scan(
		&d.ID, &d.UserID, &reportID, &report, &d.Scope1Emissions, &d.Scope2Emissions,
		&d.Scope3Emissions, &d.IntensityPerUnit, &d.IntensityPerRevenue, &d.RenewablesShare,
		&d.CircularityScore, &d.EngagementIndex, &d.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics: %w", err)
	}

	d.ReportID = reportID.String
	if err := json.Unmarshal([]byte(report), &d.DeepReport); err != nil {
		return nil, fmt.Errorf("failed to decode analytics: %w", err)
	}

	return &d, nil
}
