package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ── Enumerations ───────────────────────────────────────

// Branch is the student's engineering discipline
type Branch string

const (
	BranchComputer    Branch = "computer"
	BranchMechanical  Branch = "mechanical"
	BranchCivil       Branch = "civil"
	BranchElectrical  Branch = "electrical"
	BranchElectronics Branch = "electronics"
)

func (b Branch) Valid() bool {
	switch b {
	case BranchComputer, BranchMechanical, BranchCivil, BranchElectrical, BranchElectronics:
		return true
	}
	return false
}

// SkillLevel is the self-reported proficiency for a skill
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	}
	return false
}

// ── Profile ────────────────────────────────────────────

// Profile is a student's onboarding record
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	FullName    string    `json:"full_name"`
	Branch      Branch    `json:"branch"`
	CurrentYear int       `json:"current_year"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Skill struct {
	ID         uuid.UUID  `json:"id"`
	ProfileID  uuid.UUID  `json:"profile_id"`
	SkillName  string     `json:"skill_name"`
	SkillLevel SkillLevel `json:"skill_level"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Interest struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Interest  string    `json:"interest"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileDetails is a profile together with its skills and interests
type ProfileDetails struct {
	Profile   Profile    `json:"profile"`
	Skills    []Skill    `json:"skills"`
	Interests []Interest `json:"interests"`
}

// SkillInput is one skill entry in an onboarding request
type SkillInput struct {
	SkillName  string     `json:"skill_name" binding:"required"`
	SkillLevel SkillLevel `json:"skill_level" binding:"required,skill_level"`
}

// ProfileInput is the onboarding / re-onboarding payload
type ProfileInput struct {
	FullName    string       `json:"full_name" binding:"required"`
	Branch      Branch       `json:"branch" binding:"required,branch"`
	CurrentYear int          `json:"current_year" binding:"required,min=1,max=4"`
	Skills      []SkillInput `json:"skills" binding:"dive"`
	Interests   []string     `json:"interests"`
}

// ── Recommendations ────────────────────────────────────

// Recommendation is one persisted career suggestion tied to a profile.
// RecommendedCourses and Roadmap are stored as the documents the gateway produced.
type Recommendation struct {
	ID                 uuid.UUID       `json:"id"`
	ProfileID          uuid.UUID       `json:"profile_id"`
	CareerPath         string          `json:"career_path"`
	Description        string          `json:"description"`
	RequiredSkills     []string        `json:"required_skills"`
	SkillGaps          []string        `json:"skill_gaps"`
	RecommendedCourses json.RawMessage `json:"recommended_courses"`
	Roadmap            json.RawMessage `json:"roadmap"`
	MatchScore         *int            `json:"match_score"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewRecommendation holds the insert values for a recommendation row.
// Nil fields are written as NULL and left for the store to accept or reject.
type NewRecommendation struct {
	ProfileID          uuid.UUID
	CareerPath         *string
	Description        *string
	RequiredSkills     []string
	SkillGaps          []string
	RecommendedCourses json.RawMessage
	Roadmap            json.RawMessage
	MatchScore         *int
}

// RecommendationDraft is one element of the array returned by the gateway.
// Fields are kept raw so that keys the model left out stay absent.
type RecommendationDraft struct {
	CareerPath         json.RawMessage `json:"career_path,omitempty"`
	Description        json.RawMessage `json:"description,omitempty"`
	RequiredSkills     json.RawMessage `json:"required_skills,omitempty"`
	SkillGaps          json.RawMessage `json:"skill_gaps,omitempty"`
	RecommendedCourses json.RawMessage `json:"recommended_courses,omitempty"`
	Roadmap            json.RawMessage `json:"roadmap,omitempty"`
	MatchScore         json.RawMessage `json:"match_score,omitempty"`

	// Invalid is set when the array element could not be read as an object
	Invalid error `json:"-"`
}

// DraftFields are the keys the gateway is asked to produce for each recommendation
var DraftFields = []string{
	"career_path", "description", "required_skills", "skill_gaps",
	"recommended_courses", "roadmap", "match_score",
}

// MissingFields returns the expected keys absent from the draft
func (d RecommendationDraft) MissingFields() []string {
	values := []json.RawMessage{
		d.CareerPath, d.Description, d.RequiredSkills, d.SkillGaps,
		d.RecommendedCourses, d.Roadmap, d.MatchScore,
	}
	var missing []string
	for i, v := range values {
		if len(v) == 0 {
			missing = append(missing, DraftFields[i])
		}
	}
	return missing
}

// ToNew decodes the draft into insert values for the given profile.
// A field whose JSON type does not fit its column is an error for this draft only.
func (d RecommendationDraft) ToNew(profileID uuid.UUID) (*NewRecommendation, error) {
	if d.Invalid != nil {
		return nil, fmt.Errorf("recommendation is not an object: %w", d.Invalid)
	}
	rec := &NewRecommendation{
		ProfileID:          profileID,
		RecommendedCourses: d.RecommendedCourses,
		Roadmap:            d.Roadmap,
	}
	if err := decodeField("career_path", d.CareerPath, &rec.CareerPath); err != nil {
		return nil, err
	}
	if err := decodeField("description", d.Description, &rec.Description); err != nil {
		return nil, err
	}
	if err := decodeField("required_skills", d.RequiredSkills, &rec.RequiredSkills); err != nil {
		return nil, err
	}
	if err := decodeField("skill_gaps", d.SkillGaps, &rec.SkillGaps); err != nil {
		return nil, err
	}

	score, err := decodeScore(d.MatchScore)
	if err != nil {
		return nil, err
	}
	rec.MatchScore = score

	return rec, nil
}

// decodeScore accepts a JSON number or a numeric string and rounds it
func decodeScore(raw json.RawMessage) (*int, error) {
	var num *float64
	if err := json.Unmarshal(orNull(raw), &num); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return nil, fmt.Errorf("decoding match_score: %w", err)
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if perr != nil {
			return nil, fmt.Errorf("decoding match_score: %w", perr)
		}
		num = &f
	}
	if num == nil {
		return nil, nil
	}
	v := int(math.Round(*num))
	return &v, nil
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func decodeField(name string, raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}
