package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/careerguide-api/internal/model"
)

// Prompt is the two-message conversation sent to the gateway
type Prompt struct {
	System string
	User   string
}

const noneSpecified = "None specified"

const careerSystemPrompt = `You are an expert career counselor specializing in engineering careers. Your role is to provide detailed, personalized career recommendations for engineering students.`

const careerResponseFormat = `For each career path, provide:
1. Career path name
2. Detailed description (2-3 sentences)
3. Required skills list (6-8 skills)
4. Skill gaps (skills they need to develop)
5. Recommended courses with titles and platforms
6. A 5-step roadmap from current position to career goal
7. Match score (0-100) based on their profile

Format your response as a JSON array with the following structure:
[
  {
    "career_path": "Career Name",
    "description": "Description text",
    "required_skills": ["skill1", "skill2"],
    "skill_gaps": ["gap1", "gap2"],
    "recommended_courses": {
      "courses": [
        {"title": "Course Name", "platform": "Platform Name"}
      ]
    },
    "roadmap": {
      "steps": [
        {"title": "Step Title", "description": "Step description", "duration": "Time estimate"}
      ]
    },
    "match_score": 85
  }
]`

// BuildCareerPrompt renders the counselor prompt for a student profile
func BuildCareerPrompt(profile model.Profile, skills []model.Skill, interests []model.Interest) Prompt {
	user := fmt.Sprintf(
		"Generate 3 career recommendations for a %s engineering student (Year %d) with the following profile:\n\nSkills: %s\nInterests: %s\n\n%s",
		profile.Branch, profile.CurrentYear, formatSkills(skills), formatInterests(interests), careerResponseFormat,
	)
	return Prompt{System: careerSystemPrompt, User: user}
}

func formatSkills(skills []model.Skill) string {
	if len(skills) == 0 {
		return noneSpecified
	}
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.SkillName, s.SkillLevel))
	}
	return strings.Join(parts, ", ")
}

func formatInterests(interests []model.Interest) string {
	if len(interests) == 0 {
		return noneSpecified
	}
	parts := make([]string, 0, len(interests))
	for _, i := range interests {
		parts = append(parts, i.Interest)
	}
	return strings.Join(parts, ", ")
}
