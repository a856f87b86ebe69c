package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/careerguide-api/internal/model"
	"github.com/yourusername/careerguide-api/internal/repository"
)

// memStore is an in-memory RecommendationStore that records the order of operations
type memStore struct {
	mu        sync.Mutex
	rows      []model.Recommendation
	ops       []string
	failOn    func(rec *model.NewRecommendation) bool
	deleteErr error
	txCalls   int
}

func (m *memStore) ListByProfile(_ context.Context, profileID uuid.UUID) ([]model.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Recommendation{}
	for _, r := range m.rows {
		if r.ProfileID == profileID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteByProfile(_ context.Context, profileID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "delete")
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.ProfileID == profileID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memStore) Insert(_ context.Context, rec *model.NewRecommendation) (*model.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "insert")
	if m.failOn != nil && m.failOn(rec) {
		return nil, errors.New("violates not-null constraint")
	}
	if rec.CareerPath == nil {
		return nil, errors.New("null value in column \"career_path\"")
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
	m.rows = append(m.rows, row)
	return &row, nil
}

func (m *memStore) WithTx(_ context.Context, fn func(repository.RecommendationStore) error) error {
	m.mu.Lock()
	m.txCalls++
	snapshot := append([]model.Recommendation(nil), m.rows...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) seed(profileID uuid.UUID, paths ...string) {
	for _, p := range paths {
		m.rows = append(m.rows, model.Recommendation{ID: uuid.New(), ProfileID: profileID, CareerPath: p})
	}
}

// stubCompleter returns a canned completion and records the prompts it saw
type stubCompleter struct {
	content string
	err     error
	system  string
	user    string
	calls   int
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system = system
	s.user = user
	return s.content, s.err
}
