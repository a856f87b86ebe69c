package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/careerguide-api/internal/middleware"
	"github.com/yourusername/careerguide-api/internal/model"
	"github.com/yourusername/careerguide-api/internal/service"
)

type RecommendationHandler struct {
	recs     *service.RecommendationService
	profiles ProfileStore
}

func NewRecommendationHandler(recs *service.RecommendationService, profiles ProfileStore) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, profiles: profiles}
}

type generateRequest struct {
	Profile   *model.Profile   `json:"profile" binding:"required"`
	Skills    []model.Skill    `json:"skills"`
	Interests []model.Interest `json:"interests"`
}

// Generate handles POST /generate-career-recommendations.
// The caller supplies the profile, skills and interests in the body; the
// profile must belong to the signed-in user.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Profile.ID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile.id is required"})
		return
	}

	owned, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}
	if owned.Profile.ID != req.Profile.ID {
		log.Warn().
			Str("uid", middleware.GetFirebaseUID(c)).
			Str("profileId", req.Profile.ID.String()).
			Msg("Rejected generation for a profile the caller does not own")
		c.JSON(http.StatusForbidden, gin.H{"error": "Profile does not belong to the current user"})
		return
	}

	h.generate(c, service.GenerateInput{
		Profile:   *req.Profile,
		Skills:    req.Skills,
		Interests: req.Interests,
	})
}

// Regenerate handles POST /recommendations/regenerate for the signed-in student
func (h *RecommendationHandler) Regenerate(c *gin.Context) {
	details, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}

	h.generate(c, service.GenerateInput{
		Profile:   details.Profile,
		Skills:    details.Skills,
		Interests: details.Interests,
	})
}

// List handles GET /recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
	details, ok := currentProfile(c, h.profiles)
	if !ok {
		return
	}

	recs, err := h.recs.List(c.Request.Context(), details.Profile.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *RecommendationHandler) generate(c *gin.Context, in service.GenerateInput) {
	recs, err := h.recs.Generate(c.Request.Context(), in)
	if err != nil {
		status, msg := classifyError(err)
		log.Error().Err(err).
			Int("status", status).
			Str("profileId", in.Profile.ID.String()).
			Msg("Error generating career recommendations")
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// classifyError maps a pipeline failure to its HTTP status and user-facing message
func classifyError(err error) (int, string) {
	var (
		gatewayErr   *service.GatewayError
		transportErr *service.TransportError
		parseErr     *service.ParseError
	)

	switch {
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."
	case errors.Is(err, service.ErrPaymentRequired):
		return http.StatusPaymentRequired, "AI service requires payment. Please contact support."
	case errors.Is(err, service.ErrNotConfigured),
		errors.As(err, &gatewayErr),
		errors.As(err, &transportErr),
		errors.As(err, &parseErr):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
