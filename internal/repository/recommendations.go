package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/careerguide-api/internal/model"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx
type dbtx interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecommendationStore is the persistence surface used by the generation pipeline
type RecommendationStore interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Recommendation, error)
	DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
	Insert(ctx context.Context, rec *model.NewRecommendation) (*model.Recommendation, error)
	// WithTx runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(RecommendationStore) error) error
}

type RecommendationRepo struct {
	db dbtx
}

func NewRecommendationRepo(db dbtx) *RecommendationRepo {
	return &RecommendationRepo{db: db}
}

const recommendationColumns = `id, profile_id, career_path, description, required_skills,
		       skill_gaps, recommended_courses, roadmap, match_score, created_at`

// ListByProfile returns the profile's current batch, best match first
func (r *RecommendationRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Recommendation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recommendationColumns+`
		FROM career_recommendations
		WHERE profile_id = $1
		ORDER BY match_score DESC NULLS LAST, created_at ASC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer rows.Close()

	recs := []model.Recommendation{}
	for rows.Next() {
		var rec model.Recommendation
		if err := scanRecommendation(rows, &rec); err != nil {
			return nil, fmt.Errorf("scanning recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}

	return recs, nil
}

// DeleteByProfile removes every recommendation for a profile
func (r *RecommendationRepo) DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM career_recommendations WHERE profile_id = $1`, profileID)
	if err != nil {
		return 0, fmt.Errorf("deleting recommendations: %w", err)
	}
	return result.RowsAffected(), nil
}

// Insert writes one recommendation inside its own savepoint, so a rejected
// row does not poison an enclosing transaction.
func (r *RecommendationRepo) Insert(ctx context.Context, rec *model.NewRecommendation) (*model.Recommendation, error) {
	sp, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening savepoint: %w", err)
	}
	defer sp.Rollback(ctx)

	var created model.Recommendation
	err = scanRecommendation(sp.QueryRow(ctx, `
		INSERT INTO career_recommendations (profile_id, career_path, description,
		                                    required_skills, skill_gaps,
		                                    recommended_courses, roadmap, match_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+recommendationColumns,
		rec.ProfileID, rec.CareerPath, rec.Description, rec.RequiredSkills,
		rec.SkillGaps, nullableJSON(rec.RecommendedCourses), nullableJSON(rec.Roadmap),
		rec.MatchScore,
	), &created)
	if err != nil {
		return nil, fmt.Errorf("inserting recommendation: %w", err)
	}

	if err := sp.Commit(ctx); err != nil {
		return nil, fmt.Errorf("releasing savepoint: %w", err)
	}
	return &created, nil
}

func (r *RecommendationRepo) WithTx(ctx context.Context, fn func(RecommendationStore) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&RecommendationRepo{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func scanRecommendation(row pgx.Row, rec *model.Recommendation) error {
	var courses, roadmap []byte
	err := row.Scan(
		&rec.ID, &rec.ProfileID, &rec.CareerPath, &rec.Description,
		&rec.RequiredSkills, &rec.SkillGaps, &courses, &roadmap,
		&rec.MatchScore, &rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	rec.RecommendedCourses = json.RawMessage(courses)
	rec.Roadmap = json.RawMessage(roadmap)
	return nil
}

// nullableJSON maps an absent or null document to SQL NULL
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}
