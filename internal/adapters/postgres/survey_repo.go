package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

const upsertSurveySQL = `
	INSERT INTO surveys (sdpath, name, geometry)
	VALUES ($1, $2, $3)
	ON CONFLICT (sdpath) DO UPDATE
	SET name = EXCLUDED.name, geometry = EXCLUDED.geometry, updated_at = now()
	RETURNING id, created_at
`

// SurveyRepo implements ports.SurveyRepository with pgx. Geometry is kept
// in a jsonb column.
type SurveyRepo struct {
	db *DB
}

// NewSurveyRepo creates a new SurveyRepo.
func NewSurveyRepo(db *DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// Upsert inserts or replaces a survey and fills in its ID and creation time.
func (r *SurveyRepo) Upsert(ctx context.Context, s *domain.Survey) error {
	geom, err := json.Marshal(s.Geometry)
	if err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}
	return r.db.Pool.QueryRow(ctx, upsertSurveySQL, s.SDPath, s.Name, geom).Scan(&s.ID, &s.CreatedAt)
}

// UpsertBatch inserts many surveys using pgx.Batch.
func (r *SurveyRepo) UpsertBatch(ctx context.Context, surveys []domain.Survey) error {
	batch := &pgx.Batch{}
	for i := range surveys {
		geom, err := json.Marshal(surveys[i].Geometry)
		if err != nil {
			return fmt.Errorf("encode geometry %s: %w", surveys[i].SDPath, err)
		}
		batch.Queue(upsertSurveySQL, surveys[i].SDPath, surveys[i].Name, geom)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range surveys {
		if err := br.QueryRow().Scan(&surveys[i].ID, &surveys[i].CreatedAt); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetBySDPath returns a survey by storage path.
func (r *SurveyRepo) GetBySDPath(ctx context.Context, sdpath string) (*domain.Survey, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, sdpath, COALESCE(name, ''), geometry, created_at
		FROM surveys WHERE sdpath = $1
	`, sdpath)

	s, err := scanSurvey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all surveys ordered by path.
func (r *SurveyRepo) List(ctx context.Context) ([]domain.Survey, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, sdpath, COALESCE(name, ''), geometry, created_at
		FROM surveys ORDER BY sdpath
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []domain.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, *s)
	}
	return surveys, rows.Err()
}

func scanSurvey(row pgx.Row) (*domain.Survey, error) {
	var (
		s    domain.Survey
		geom []byte
	)
	if err := row.Scan(&s.ID, &s.SDPath, &s.Name, &geom, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(geom, &s.Geometry); err != nil {
		return nil, fmt.Errorf("decode geometry %s: %w", s.SDPath, err)
	}
	return &s, nil
}
