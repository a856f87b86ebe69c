package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/careerguide-api/internal/middleware"
	"github.com/yourusername/careerguide-api/internal/model"
	"github.com/yourusername/careerguide-api/internal/repository"
	"github.com/yourusername/careerguide-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// ── Fakes ──────────────────────────────────────────────

type fakeRecStore struct {
	mu     sync.Mutex
	rows   []model.Recommendation
	ops    []string
	failOn string
}

func (f *fakeRecStore) ListByProfile(_ context.Context, profileID uuid.UUID) ([]model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Recommendation{}
	for _, r := range f.rows {
		if r.ProfileID == profileID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecStore) DeleteByProfile(_ context.Context, profileID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete")
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.ProfileID == profileID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeRecStore) Insert(_ context.Context, rec *model.NewRecommendation) (*model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "insert")
	if rec.CareerPath == nil || *rec.CareerPath == f.failOn {
		return nil, errors.New("violates check constraint")
	}
	row := model.Recommendation{
		ID:                 uuid.New(),
		ProfileID:          rec.ProfileID,
		CareerPath:         *rec.CareerPath,
		RequiredSkills:     rec.RequiredSkills,
		SkillGaps:          rec.SkillGaps,
		RecommendedCourses: rec.RecommendedCourses,
		Roadmap:            rec.Roadmap,
		MatchScore:         rec.MatchScore,
		CreatedAt:          time.Now(),
	}
	if rec.Description != nil {
		row.Description = *rec.Description
	}
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeRecStore) WithTx(_ context.Context, fn func(repository.RecommendationStore) error) error {
	return fn(f)
}

type fakeProfiles struct {
	byUser    map[string]*model.ProfileDetails
	err       error
	createErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUser: map[string]*model.ProfileDetails{}}
}

func (f *fakeProfiles) FindByUserID(_ context.Context, userID string) (*model.ProfileDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

func (f *fakeProfiles) Create(_ context.Context, userID string, in *model.ProfileInput) (*model.ProfileDetails, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	d := detailsFromInput(uuid.New(), userID, in)
	f.byUser[userID] = d
	return d, nil
}

func (f *fakeProfiles) Update(_ context.Context, profileID uuid.UUID, in *model.ProfileInput) (*model.ProfileDetails, error) {
	for uid, d := range f.byUser {
		if d.Profile.ID == profileID {
			updated := detailsFromInput(profileID, uid, in)
			f.byUser[uid] = updated
			return updated, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeProfiles) Delete(_ context.Context, profileID uuid.UUID) error {
	for uid, d := range f.byUser {
		if d.Profile.ID == profileID {
			delete(f.byUser, uid)
			return nil
		}
	}
	return repository.ErrProfileNotFound
}

func detailsFromInput(id uuid.UUID, userID string, in *model.ProfileInput) *model.ProfileDetails {
	d := &model.ProfileDetails{
		Profile: model.Profile{
			ID: id, UserID: userID, FullName: in.FullName,
			Branch: in.Branch, CurrentYear: in.CurrentYear,
		},
		Skills:    []model.Skill{},
		Interests: []model.Interest{},
	}
	for _, s := range in.Skills {
		d.Skills = append(d.Skills, model.Skill{ID: uuid.New(), ProfileID: id, SkillName: s.SkillName, SkillLevel: s.SkillLevel})
	}
	for _, i := range in.Interests {
		d.Interests = append(d.Interests, model.Interest{ID: uuid.New(), ProfileID: id, Interest: i})
	}
	return d
}

// ── Helpers ────────────────────────────────────────────

// withUID stands in for the Firebase middleware
func withUID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set(middleware.ContextKeyFirebaseUID, uid)
		}
		c.Next()
	}
}

type testEnv struct {
	router   *gin.Engine
	recs     *fakeRecStore
	profiles *fakeProfiles
	gateway  *httptest.Server
	requests int
	lastBody []byte
}

// newTestEnv wires real handlers and services against a stub gateway that
// answers with the given status and body
func newTestEnv(t *testing.T, apiKey string, status int, body string, uid string) *testEnv {
	t.Helper()
	env := &testEnv{recs: &fakeRecStore{}, profiles: newFakeProfiles()}

	env.gateway = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests++
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		env.lastBody = buf.Bytes()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(env.gateway.Close)

	gateway := service.NewGatewayClient(apiKey, env.gateway.URL, "google/gemini-2.5-flash")
	svc := service.NewRecommendationService(gateway, service.BracketExtractor{}, env.recs)

	recHandler := NewRecommendationHandler(svc, env.profiles)
	profileHandler := NewProfileHandler(env.profiles)

	r := gin.New()
	r.Use(middleware.CORS())
	api := r.Group("/", withUID(uid))
	api.POST("/generate-career-recommendations", recHandler.Generate)
	api.GET("/profile", profileHandler.GetProfile)
	api.POST("/profile", profileHandler.CreateProfile)
	api.PUT("/profile", profileHandler.UpdateProfile)
	api.DELETE("/profile", profileHandler.DeleteProfile)
	api.GET("/recommendations", recHandler.List)
	api.POST("/recommendations/regenerate", recHandler.Regenerate)

	env.router = r
	return env
}

// seedProfile onboards uid directly in the fake store and returns the profile id
func (e *testEnv) seedProfile(uid string) uuid.UUID {
	d := detailsFromInput(uuid.New(), uid, &model.ProfileInput{
		FullName: "Asha Rao", Branch: model.BranchComputer, CurrentYear: 2,
	})
	e.profiles.byUser[uid] = d
	return d.Profile.ID
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://careerguide.example")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// completion wraps text in a chat completions envelope
func completion(t *testing.T, text string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": text}},
		},
	})
	require.NoError(t, err)
	return string(raw)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}
