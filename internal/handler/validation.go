package handler

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yourusername/careerguide-api/internal/model"
)

var registerOnce sync.Once

// RegisterValidators adds the `branch` and `skill_level` binding tags to gin's validator
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("branch", func(fl validator.FieldLevel) bool {
			return model.Branch(fl.Field().String()).Valid()
		}); err != nil {
			return
		}
		err = v.RegisterValidation("skill_level", func(fl validator.FieldLevel) bool {
			return model.SkillLevel(fl.Field().String()).Valid()
		})
	})
	return err
}

// validationMessage turns binding errors into a short user-facing sentence
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "branch":
			parts = append(parts, "branch must be one of computer, mechanical, civil, electrical, electronics")
		case "skill_level":
			parts = append(parts, "skill_level must be one of beginner, intermediate, advanced, expert")
		case "min", "max":
			parts = append(parts, fe.Field()+" is out of range")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
