package service

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
	"github.com/yourusername/careerguide-api/internal/model"
)

// Extractor turns raw completion text into recommendation drafts
type Extractor interface {
	Extract(content string) ([]model.RecommendationDraft, error)
}

// draftSchema lists the keys each recommendation should carry. Violations are
// reported but never reject a draft.
const draftSchema = `{
  "type": "object",
  "required": ["career_path", "description", "required_skills", "skill_gaps",
               "recommended_courses", "roadmap", "match_score"],
  "properties": {
    "career_path": {"type": "string"},
    "description": {"type": "string"},
    "required_skills": {"type": "array", "items": {"type": "string"}},
    "skill_gaps": {"type": "array", "items": {"type": "string"}},
    "recommended_courses": {"type": "object"},
    "roadmap": {"type": "object"},
    "match_score": {"type": "number"}
  }
}`

var draftSchemaLoader = gojsonschema.NewStringLoader(draftSchema)

// BracketExtractor takes the text from the first '[' to the last ']' and
// parses it as a JSON array of drafts
type BracketExtractor struct{}

func (BracketExtractor) Extract(content string) ([]model.RecommendationDraft, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, &ParseError{Reason: "no JSON array present"}
	}

	raw := content[start : end+1]

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &ParseError{Reason: "malformed JSON array", Err: err}
	}

	drafts := make([]model.RecommendationDraft, 0, len(items))
	for i, item := range items {
		checkDraft(i, item)

		var d model.RecommendationDraft
		if err := json.Unmarshal(item, &d); err != nil {
			// Kept so the row fails on its own when persisted
			d = model.RecommendationDraft{Invalid: err}
		}
		drafts = append(drafts, d)
	}

	return drafts, nil
}

func checkDraft(index int, item json.RawMessage) {
	result, err := gojsonschema.Validate(draftSchemaLoader, gojsonschema.NewBytesLoader(item))
	if err != nil {
		log.Warn().Err(err).Int("index", index).Msg("Could not check recommendation shape")
		return
	}
	if result.Valid() {
		return
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, e.String())
	}
	log.Warn().Int("index", index).Strs("issues", issues).Msg("Recommendation deviates from requested shape")
}
