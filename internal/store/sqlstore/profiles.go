package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/store"
)

// profileColumns must match the scan order in scanProfile.
const profileColumns = `id, game_name, device_name, share_code, camera_json, ads_json,
	gyro_json, gyro_enabled, upvotes, created_at`

func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.SensitivityProfile, error) {
	var (
		p          domain.SensitivityProfile
		game       string
		cameraJSON string
		adsJSON    string
		gyroJSON   sql.NullString
		createdAt  string
	)

	err := scanner.Scan(
		&p.ID,
		&game,
		&p.DeviceName,
		&p.ShareCode,
		&cameraJSON,
		&adsJSON,
		&gyroJSON,
		&p.GyroEnabled,
		&p.Upvotes,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.Game = sensitivity.Game(game)

	if err := json.Unmarshal([]byte(cameraJSON), &p.Camera); err != nil {
		return nil, fmt.Errorf("decode camera sensitivity for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(adsJSON), &p.ADS); err != nil {
		return nil, fmt.Errorf("decode ads sensitivity for %s: %w", p.ID, err)
	}
	if gyroJSON.Valid {
		var g sensitivity.ScopeSensitivity
		if err := json.Unmarshal([]byte(gyroJSON.String), &g); err != nil {
			return nil, fmt.Errorf("decode gyro sensitivity for %s: %w", p.ID, err)
		}
		p.Gyro = &g
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", p.ID, err)
	}

	return &p, nil
}

// CreateProfile inserts a new profile.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateProfile(ctx context.Context, p *domain.SensitivityProfile) error {
	cameraJSON, err := json.Marshal(p.Camera)
	if err != nil {
		return fmt.Errorf("encode camera sensitivity: %w", err)
	}
	adsJSON, err := json.Marshal(p.ADS)
	if err != nil {
		return fmt.Errorf("encode ads sensitivity: %w", err)
	}
	var gyroJSON sql.NullString
	if p.Gyro != nil {
		raw, err := json.Marshal(p.Gyro)
		if err != nil {
			return fmt.Errorf("encode gyro sensitivity: %w", err)
		}
		gyroJSON = nullString(string(raw))
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO profiles (
			id, game_name, device_name, share_code, camera_json, ads_json,
			gyro_json, gyro_enabled, upvotes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID,
		string(p.Game),
		p.DeviceName,
		p.ShareCode,
		string(cameraJSON),
		string(adsJSON),
		gyroJSON,
		p.GyroEnabled,
		p.Upvotes,
		formatTime(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// GetProfile retrieves a profile by ID.
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.SensitivityProfile, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`), id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles returns profiles in insertion order, optionally for one game.
func (s *Store) ListProfiles(ctx context.Context, game *sensitivity.Game) ([]domain.SensitivityProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	var args []any
	if game != nil {
		query += ` WHERE game_name = ?`
		args = append(args, string(*game))
	}
	query += ` ORDER BY seq`

	return s.queryProfiles(ctx, s.q(query), args...)
}

// GetProfilesByIDs returns profiles in the order of ids, skipping unknown IDs.
func (s *Store) GetProfilesByIDs(ctx context.Context, ids []string) ([]domain.SensitivityProfile, error) {
	if len(ids) == 0 {
		return []domain.SensitivityProfile{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id IN (%s)`,
		profileColumns, strings.Join(placeholders, ","))

	found, err := s.queryProfiles(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.SensitivityProfile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]domain.SensitivityProfile, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *Store) queryProfiles(ctx context.Context, query string, args ...any) ([]domain.SensitivityProfile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.SensitivityProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// IncrementUpvotes adds one upvote in a single statement and returns the new
// count. Returns store.ErrProfileNotFound if the profile does not exist.
func (s *Store) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	var upvotes int
	err := s.db.QueryRowContext(ctx,
		s.q(`UPDATE profiles SET upvotes = upvotes + 1 WHERE id = ? RETURNING upvotes`), id,
	).Scan(&upvotes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrProfileNotFound
	}
	if err != nil {
		return 0, err
	}
	return upvotes, nil
}

// ListDeviceNames returns distinct device names in byte order.
// Sorting happens here so both backends agree regardless of collation.
func (s *Store) ListDeviceNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT device_name FROM profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

// CountProfiles returns the number of stored profiles.
func (s *Store) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
