package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// Validator wraps the struct-tag validator with the custom domain rules
// registered.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate validates struct tags including the custom domain rules.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionRating,
		models.QuestionOpenEnded,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateAssessorRelation(fl validator.FieldLevel) bool {
	validRelations := []models.AssessorRelation{
		models.RelationPeer,
		models.RelationManager,
		models.RelationDirectReport,
		models.RelationSelf,
		models.RelationOther,
	}

	value := fl.Field().String()
	for _, validRelation := range validRelations {
		if string(validRelation) == value {
			return true
		}
	}
	return false
}

func ValidateCampaignStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.CampaignStatus{
		models.CampaignDraft,
		models.CampaignActive,
		models.CampaignCompleted,
		models.CampaignArchived,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("assessor_relation", ValidateAssessorRelation)
	validate.RegisterValidation("campaign_status", ValidateCampaignStatus)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
