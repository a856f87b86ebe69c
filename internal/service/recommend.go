package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/careerguide-api/internal/model"
	"github.com/yourusername/careerguide-api/internal/repository"
)

// RecommendationInserter is the single-row write used by PersistRecommendations
type RecommendationInserter interface {
	Insert(ctx context.Context, rec *model.NewRecommendation) (*model.Recommendation, error)
}

// GenerateInput is everything the pipeline needs about one student
type GenerateInput struct {
	Profile   model.Profile
	Skills    []model.Skill
	Interests []model.Interest
}

// RecommendationService runs the prompt → gateway → extract → persist pipeline
type RecommendationService struct {
	gateway   Completer
	extractor Extractor
	store     repository.RecommendationStore
	locks     *profileLocks
}

func NewRecommendationService(gateway Completer, extractor Extractor, store repository.RecommendationStore) *RecommendationService {
	if extractor == nil {
		extractor = BracketExtractor{}
	}
	return &RecommendationService{
		gateway:   gateway,
		extractor: extractor,
		store:     store,
		locks:     newProfileLocks(),
	}
}

// Generate produces a fresh batch for the profile and replaces the stored one.
// Gateway and parse failures leave the existing batch untouched.
func (s *RecommendationService) Generate(ctx context.Context, in GenerateInput) ([]model.Recommendation, error) {
	prompt := BuildCareerPrompt(in.Profile, in.Skills, in.Interests)

	content, err := s.gateway.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, err
	}

	drafts, err := s.extractor.Extract(content)
	if err != nil {
		return nil, err
	}

	profileID := in.Profile.ID
	unlock := s.locks.lock(profileID)
	defer unlock()

	var saved []model.Recommendation
	err = s.store.WithTx(ctx, func(tx repository.RecommendationStore) error {
		deleted, err := tx.DeleteByProfile(ctx, profileID)
		if err != nil {
			return err
		}
		log.Info().Str("profileId", profileID.String()).Int64("deleted", deleted).Msg("Cleared previous recommendations")

		saved = PersistRecommendations(ctx, tx, profileID, drafts)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replacing recommendations: %w", err)
	}

	log.Info().
		Str("profileId", profileID.String()).
		Int("generated", len(drafts)).
		Int("saved", len(saved)).
		Msg("Successfully saved recommendations")

	return saved, nil
}

// List returns the stored batch for a profile
func (s *RecommendationService) List(ctx context.Context, profileID uuid.UUID) ([]model.Recommendation, error) {
	return s.store.ListByProfile(ctx, profileID)
}

// PersistRecommendations inserts each draft independently. A draft that
// cannot be decoded or stored is logged and skipped; the rest still go in.
func PersistRecommendations(ctx context.Context, store RecommendationInserter, profileID uuid.UUID, drafts []model.RecommendationDraft) []model.Recommendation {
	saved := make([]model.Recommendation, 0, len(drafts))
	for i, d := range drafts {
		rec, err := d.ToNew(profileID)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed recommendation")
			continue
		}

		created, err := store.Insert(ctx, rec)
		if err != nil {
			log.Error().Err(err).
				Str("profileId", profileID.String()).
				Int("index", i).
				Strs("missing", d.MissingFields()).
				Msg("Error saving recommendation")
			continue
		}
		saved = append(saved, *created)
	}
	return saved
}

// profileLocks serialises regeneration per profile within this process
type profileLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*profileLock
}

type profileLock struct {
	mu   sync.Mutex
	refs int
}

func newProfileLocks() *profileLocks {
	return &profileLocks{locks: make(map[uuid.UUID]*profileLock)}
}

func (p *profileLocks) lock(id uuid.UUID) func() {
	p.mu.Lock()
	l, ok := p.locks[id]
	if !ok {
		l = &profileLock{}
		p.locks[id] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, id)
		}
		p.mu.Unlock()
	}
}
