package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campuslink/campus-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	// Report field errors under their json names so struct-tag errors
	// line up with the hand-written business rule errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateGrievanceCreate validates grievance submission business rules
func (bv *BusinessValidator) ValidateGrievanceCreate(req *GrievanceCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateGrievanceStatus validates a grievance status transition
// against the current record. A remark is mandatory when moving into a
// terminal state.
func (bv *BusinessValidator) ValidateGrievanceStatus(req *GrievanceStatusRequest, existing *models.Grievance) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if existing.Status.IsTerminal() {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("grievance is %s and can no longer change", existing.Status),
			Value:   req.Status,
			Rule:    "status_transition",
		})
		return errors
	}

	if !existing.Status.CanTransition(req.Status) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", existing.Status, req.Status),
			Value:   req.Status,
			Rule:    "status_transition",
		})
	}

	if req.Status.IsTerminal() && (req.Remark == nil || strings.TrimSpace(*req.Remark) == "") {
		errors = append(errors, ValidationError{
			Field:   "remark",
			Message: "is required when resolving or rejecting a grievance",
			Value:   req.Remark,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidatePostingCreate validates opportunity and internship creation
func (bv *BusinessValidator) ValidatePostingCreate(req *PostingCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for i, skill := range req.Skills {
		if strings.TrimSpace(skill) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("skills[%d]", i),
				Message: "skill cannot be empty",
				Value:   skill,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateApplicationCreate validates a student application. The
// parent-reference exclusivity rule lives here so every caller gets it.
func (bv *BusinessValidator) ValidateApplicationCreate(req *ApplicationCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.OpportunityID == nil && req.InternshipID == nil {
		errors = append(errors, ValidationError{
			Field:   "opportunity_id",
			Message: "either opportunity_id or internship_id is required",
			Rule:    "business_logic",
		})
	}
	if req.OpportunityID != nil && req.InternshipID != nil {
		errors = append(errors, ValidationError{
			Field:   "opportunity_id",
			Message: "cannot reference both an opportunity and an internship",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateApplicationStatus validates a reviewer transition against the
// current application record.
func (bv *BusinessValidator) ValidateApplicationStatus(req *ApplicationStatusRequest, existing *models.Application) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !existing.Status.CanTransition(req.Status) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", existing.Status, req.Status),
			Value:   req.Status,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateEventCreate validates a calendar event; an end before the
// start is rejected here rather than in the database.
func (bv *BusinessValidator) ValidateEventCreate(req *EventCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		errors = append(errors, ValidationError{
			Field:   "ends_at",
			Message: "must not be before starts_at",
			Value:   req.EndsAt,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("item_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Description validation (max 5000 characters)
	bv.validate.RegisterValidation("item_description", func(fl validator.FieldLevel) bool {
		desc := fl.Field().String()
		return len(desc) <= 5000
	})

	// Deadline validation (must be in future)
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true // Optional field
		}

		var deadline time.Time
		if field.Kind() == reflect.Ptr {
			deadline = field.Elem().Interface().(time.Time)
		} else {
			deadline = field.Interface().(time.Time)
		}

		return deadline.After(time.Now())
	})

	bv.validate.RegisterValidation("grievance_category", func(fl validator.FieldLevel) bool {
		category := models.GrievanceCategory(fl.Field().String())
		switch category {
		case models.CategoryAcademic, models.CategoryFinancial, models.CategoryHarassment,
			models.CategoryInfrastructure, models.CategoryOther:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("grievance_priority", func(fl validator.FieldLevel) bool {
		priority := models.GrievancePriority(fl.Field().String())
		switch priority {
		case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("grievance_status", func(fl validator.FieldLevel) bool {
		status := models.GrievanceStatus(fl.Field().String())
		switch status {
		case models.GrievancePending, models.GrievanceInProgress,
			models.GrievanceResolved, models.GrievanceRejected:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		status := models.ApplicationStatus(fl.Field().String())
		switch status {
		case models.ApplicationApplied, models.ApplicationShortlisted,
			models.ApplicationAccepted, models.ApplicationRejected:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("lostfound_status", func(fl validator.FieldLevel) bool {
		status := models.LostFoundStatus(fl.Field().String())
		switch status {
		case models.ItemLost, models.ItemFound, models.ItemClaimed:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		switch role {
		case models.RoleStudent, models.RoleFaculty, models.RoleAuthority, models.RoleAdmin:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("account_status", func(fl validator.FieldLevel) bool {
		status := models.AccountStatus(fl.Field().String())
		return status == models.AccountActive || status == models.AccountBlocked
	})
}
