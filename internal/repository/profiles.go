package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/careerguide-api/internal/model"
)

var (
	// ErrProfileNotFound is returned by mutations that target a missing profile
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when the user already has a profile
	ErrProfileExists = errors.New("profile already exists")
)

const uniqueViolation = "23505"

type ProfileRepo struct {
	db dbtx
}

func NewProfileRepo(db dbtx) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, user_id, full_name, branch, current_year, created_at, updated_at`

func scanProfile(row pgx.Row, p *model.Profile) error {
	return row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Branch, &p.CurrentYear, &p.CreatedAt, &p.UpdatedAt)
}

// FindByUserID loads the profile owned by an auth subject along with its
// skills and interests. Returns nil when the user has not onboarded yet.
func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.ProfileDetails, error) {
	var p model.Profile
	err := scanProfile(r.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles
		WHERE user_id = $1
	`, userID), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding profile by user id: %w", err)
	}

	return r.details(ctx, r.db, p)
}

// Create inserts a profile with its skills and interests in one transaction
func (r *ProfileRepo) Create(ctx context.Context, userID string, in *model.ProfileInput) (*model.ProfileDetails, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p model.Profile
	err = scanProfile(tx.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, full_name, branch, current_year)
		VALUES ($1, $2, $3, $4)
		RETURNING `+profileColumns,
		userID, in.FullName, in.Branch, in.CurrentYear,
	), &p)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	if err := insertSkillsAndInterests(ctx, tx, p.ID, in); err != nil {
		return nil, err
	}

	details, err := r.details(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return details, nil
}

// Update rewrites the profile fields and replaces its skills and interests
func (r *ProfileRepo) Update(ctx context.Context, profileID uuid.UUID, in *model.ProfileInput) (*model.ProfileDetails, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p model.Profile
	err = scanProfile(tx.QueryRow(ctx, `
		UPDATE user_profiles
		SET full_name = $2, branch = $3, current_year = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		profileID, in.FullName, in.Branch, in.CurrentYear,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_skills WHERE profile_id = $1`, profileID); err != nil {
		return nil, fmt.Errorf("clearing skills: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_interests WHERE profile_id = $1`, profileID); err != nil {
		return nil, fmt.Errorf("clearing interests: %w", err)
	}
	if err := insertSkillsAndInterests(ctx, tx, profileID, in); err != nil {
		return nil, err
	}

	details, err := r.details(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return details, nil
}

// Delete removes a profile; skills, interests and recommendations cascade
func (r *ProfileRepo) Delete(ctx context.Context, profileID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepo) details(ctx context.Context, q dbtx, p model.Profile) (*model.ProfileDetails, error) {
	skills, err := listSkills(ctx, q, p.ID)
	if err != nil {
		return nil, err
	}
	interests, err := listInterests(ctx, q, p.ID)
	if err != nil {
		return nil, err
	}
	return &model.ProfileDetails{Profile: p, Skills: skills, Interests: interests}, nil
}

func listSkills(ctx context.Context, q dbtx, profileID uuid.UUID) ([]model.Skill, error) {
	rows, err := q.Query(ctx, `
		SELECT id, profile_id, skill_name, skill_level, created_at
		FROM user_skills
		WHERE profile_id = $1
		ORDER BY created_at, skill_name
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.SkillName, &s.SkillLevel, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func listInterests(ctx context.Context, q dbtx, profileID uuid.UUID) ([]model.Interest, error) {
	rows, err := q.Query(ctx, `
		SELECT id, profile_id, interest, created_at
		FROM user_interests
		WHERE profile_id = $1
		ORDER BY created_at, interest
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing interests: %w", err)
	}
	defer rows.Close()

	interests := []model.Interest{}
	for rows.Next() {
		var i model.Interest
		if err := rows.Scan(&i.ID, &i.ProfileID, &i.Interest, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interest row: %w", err)
		}
		interests = append(interests, i)
	}
	return interests, rows.Err()
}

func insertSkillsAndInterests(ctx context.Context, tx pgx.Tx, profileID uuid.UUID, in *model.ProfileInput) error {
	for _, s := range in.Skills {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_skills (profile_id, skill_name, skill_level)
			VALUES ($1, $2, $3)
		`, profileID, s.SkillName, s.SkillLevel)
		if err != nil {
			return fmt.Errorf("inserting skill %q: %w", s.SkillName, err)
		}
	}
	for _, interest := range in.Interests {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_interests (profile_id, interest)
			VALUES ($1, $2)
		`, profileID, interest)
		if err != nil {
			return fmt.Errorf("inserting interest %q: %w", interest, err)
		}
	}
	return nil
}
