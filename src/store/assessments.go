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

const assessmentColumns = `id, user_id, industry, responses, carbon_score, esg_score, completed_at`

func (s *Store) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now().UTC()
	}
	if a.Responses == nil {
		a.Responses = map[string]any{}
	}

	responses, err := marshalJSON(a.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode responses: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO assessments (`+assessmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Industry, responses, a.CarbonScore, a.ESGScore, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	return nil
}

func (s *Store) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)

	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Store) ListAssessments(ctx context.Context, userID string, limit int) ([]models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE user_id = ? ORDER BY completed_at DESC, rowid DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	assessments := []models.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *a)
	}

	return assessments, rows.Err()
}

func scanAssessment(row scanner) (*models.Assessment, error) {
	var a models.Assessment
	var responses string

	if err := row.Scan(&a.ID, &a.UserID, &a.Industry, &responses, &a.CarbonScore, &a.ESGScore, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read assessment: %w", err)
	}

	if err := json.Unmarshal([]byte(responses), &a.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}

	return &a, nil
}
