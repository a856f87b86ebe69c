package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchValid(t *testing.T) {
	for _, b := range []Branch{BranchComputer, BranchMechanical, BranchCivil, BranchElectrical, BranchElectronics} {
		assert.True(t, b.Valid(), string(b))
	}
	assert.False(t, Branch("chemical").Valid())
	assert.False(t, Branch("").Valid())
}

func TestSkillLevelValid(t *testing.T) {
	for _, l := range []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert} {
		assert.True(t, l.Valid(), string(l))
	}
	assert.False(t, SkillLevel("guru").Valid())
}

func TestRecommendationDraft_MissingFields(t *testing.T) {
	var d RecommendationDraft
	require.NoError(t, json.Unmarshal([]byte(`{"career_path":"Data Engineer","match_score":80}`), &d))

	assert.Equal(t, []string{"description", "required_skills", "skill_gaps", "recommended_courses", "roadmap"}, d.MissingFields())
}

func TestRecommendationDraft_ToNew(t *testing.T) {
	profileID := uuid.New()
	var d RecommendationDraft
	require.NoError(t, json.Unmarshal([]byte(`{
		"career_path": "ML Engineer",
		"description": "Builds models.",
		"required_skills": ["Python", "PyTorch"],
		"skill_gaps": ["MLOps"],
		"recommended_courses": {"courses": [{"title": "Deep Learning", "platform": "Coursera"}]},
		"roadmap": {"steps": [{"title": "Learn", "description": "Basics", "duration": "3 months"}]},
		"match_score": 87.6
	}`), &d))

	rec, err := d.ToNew(profileID)
	require.NoError(t, err)

	assert.Equal(t, profileID, rec.ProfileID)
	require.NotNil(t, rec.CareerPath)
	assert.Equal(t, "ML Engineer", *rec.CareerPath)
	assert.Equal(t, []string{"Python", "PyTorch"}, rec.RequiredSkills)
	assert.Equal(t, []string{"MLOps"}, rec.SkillGaps)
	assert.JSONEq(t, `{"courses": [{"title": "Deep Learning", "platform": "Coursera"}]}`, string(rec.RecommendedCourses))
	require.NotNil(t, rec.MatchScore)
	assert.Equal(t, 88, *rec.MatchScore)
}

func TestRecommendationDraft_ToNew_AbsentFieldsStayNil(t *testing.T) {
	var d RecommendationDraft
	require.NoError(t, json.Unmarshal([]byte(`{"career_path":"Civil Site Engineer"}`), &d))

	rec, err := d.ToNew(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, rec.Description)
	assert.Nil(t, rec.RequiredSkills)
	assert.Nil(t, rec.Roadmap)
	assert.Nil(t, rec.MatchScore)
}

func TestRecommendationDraft_ToNew_WrongShape(t *testing.T) {
	var d RecommendationDraft
	require.NoError(t, json.Unmarshal([]byte(`{"career_path":"X","required_skills":"Python, SQL"}`), &d))

	_, err := d.ToNew(uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required_skills")
}

func TestRecommendationDraft_ToNew_MatchScoreForms(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *int
		wantErr bool
	}{
		{name: "integer", raw: `85`, want: intPtr(85)},
		{name: "numeric string", raw: `"85"`, want: intPtr(85)},
		{name: "padded decimal string", raw: `" 72.5 "`, want: intPtr(73)},
		{name: "null", raw: `null`, want: nil},
		{name: "word", raw: `"high"`, wantErr: true},
		{name: "boolean", raw: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RecommendationDraft{CareerPath: json.RawMessage(`"Embedded Engineer"`), MatchScore: json.RawMessage(tt.raw)}

			rec, err := d.ToNew(uuid.New())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "match_score")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.MatchScore)
		})
	}
}

func TestRecommendationDraft_ToNew_Invalid(t *testing.T) {
	d := RecommendationDraft{Invalid: errors.New("cannot unmarshal string")}

	_, err := d.ToNew(uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an object")
}

func intPtr(v int) *int { return &v }
