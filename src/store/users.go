package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const userColumns = `id, email, password_hash, display_name, company_name, industry, company_size, role,
	regions, facilities_count, revenue_usd, production_units, suppliers_count, primary_data_share,
	products_count, bom_available, internal_carbon_price, sbti_committed, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Regions == nil {
		user.Regions = []string{}
	}

	regions, err := marshalJSON(user.Regions)
	if err != nil {
		return fmt.Errorf("failed to encode regions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.CompanyName, user.Industry,
		user.CompanySize, user.Role, regions, user.FacilitiesCount, user.RevenueUSD,
		user.ProductionUnits, user.SuppliersCount, user.PrimaryDataShare, user.ProductsCount,
		user.BOMAvailable, user.InternalCarbonPrice, user.SBTiCommitted, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// UpdateProfile applies the non-nil fields of update and returns the stored user.
func (s *Store) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.CompanyName != nil {
		add("company_name", *update.CompanyName)
	}
	if update.Industry != nil {
		add("industry", *update.Industry)
	}
	if update.CompanySize != nil {
		add("company_size", *update.CompanySize)
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.Regions != nil {
		regions, err := marshalJSON(*update.Regions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode regions: %w", err)
		}
		add("regions", regions)
	}
	if update.FacilitiesCount != nil {
		add("facilities_count", *update.FacilitiesCount)
	}
	if update.RevenueUSD != nil {
		add("revenue_usd", *update.RevenueUSD)
	}
	if update.ProductionUnits != nil {
		add("production_units", *update.ProductionUnits)
	}
	if update.SuppliersCount != nil {
		add("suppliers_count", *update.SuppliersCount)
	}
	if update.PrimaryDataShare != nil {
		add("primary_data_share", *update.PrimaryDataShare)
	}
	if update.ProductsCount != nil {
		add("products_count", *update.ProductsCount)
	}
	if update.BOMAvailable != nil {
		add("bom_available", *update.BOMAvailable)
	}
	if update.InternalCarbonPrice != nil {
		add("internal_carbon_price", *update.InternalCarbonPrice)
	}
	if update.SBTiCommitted != nil {
		add("sbti_committed", *update.SBTiCommitted)
	}

	add("updated_at", time.Now().UTC())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetUser(ctx, id)
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	var regions string

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CompanyName,
		&user.Industry, &user.CompanySize, &user.Role, &regions, &user.FacilitiesCount,
		&user.RevenueUSD, &user.ProductionUnits, &user.SuppliersCount, &user.PrimaryDataShare,
		&user.ProductsCount, &user.BOMAvailable, &user.InternalCarbonPrice, &user.SBTiCommitted,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	if err := json.Unmarshal([]byte(regions), &user.Regions); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}

	return &user, nil
}
