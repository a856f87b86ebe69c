package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/careerguide-api/internal/middleware"
	"github.com/yourusername/careerguide-api/internal/model"
	"github.com/yourusername/careerguide-api/internal/repository"
)

// ProfileStore is the profile persistence used by the handlers
type ProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*model.ProfileDetails, error)
	Create(ctx context.Context, userID string, in *model.ProfileInput) (*model.ProfileDetails, error)
	Update(ctx context.Context, profileID uuid.UUID, in *model.ProfileInput) (*model.ProfileDetails, error)
	Delete(ctx context.Context, profileID uuid.UUID) error
}

// ProfileHandler handles student onboarding
type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	details, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, details)
}

// CreateProfile handles POST /profile (first onboarding)
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	uid := middleware.GetFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var in model.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	normalizeInput(&in)

	existing, err := h.profiles.FindByUserID(c.Request.Context(), uid)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists"})
		return
	}

	details, err := h.profiles.Create(c.Request.Context(), uid, &in)
	if errors.Is(err, repository.ErrProfileExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to create profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	log.Info().Str("uid", uid).Str("profileId", details.Profile.ID.String()).Msg("Profile created")
	c.JSON(http.StatusCreated, details)
}

// UpdateProfile handles PUT /profile (re-onboarding). Skills and interests
// are replaced wholesale.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var in model.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	normalizeInput(&in)

	current, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}

	updated, err := h.profiles.Update(c.Request.Context(), current.Profile.ID, &in)
	if errors.Is(err, repository.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProfile handles DELETE /profile
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	current, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}

	err := h.profiles.Delete(c.Request.Context(), current.Profile.ID)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		log.Error().Err(err).Msg("Failed to delete profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}

	c.Status(http.StatusNoContent)
}

// currentProfile resolves the caller's profile, writing the error response
// itself when it returns false
func currentProfile(c *gin.Context, profiles ProfileStore) (*model.ProfileDetails, bool) {
	uid := middleware.GetFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}

	details, err := profiles.FindByUserID(c.Request.Context(), uid)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("Failed to load profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	if details == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return nil, false
	}
	return details, true
}

// normalizeInput trims names and drops blank or repeated interests
func normalizeInput(in *model.ProfileInput) {
	in.FullName = strings.TrimSpace(in.FullName)

	skills := in.Skills[:0]
	for _, s := range in.Skills {
		s.SkillName = strings.TrimSpace(s.SkillName)
		if s.SkillName != "" {
			skills = append(skills, s)
		}
	}
	in.Skills = skills

	seen := make(map[string]bool, len(in.Interests))
	interests := make([]string, 0, len(in.Interests))
	for _, interest := range in.Interests {
		interest = strings.TrimSpace(interest)
		if interest == "" || seen[interest] {
			continue
		}
		seen[interest] = true
		interests = append(interests, interest)
	}
	in.Interests = interests
}
