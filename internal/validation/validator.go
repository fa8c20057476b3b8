// Package validation enforces field-level business rules on write payloads.
//
// Format rules (tag name, tag color, username) are registered as custom
// go-playground/validator tags. Numeric bounds and the reserved username come
// from config.Rules so that callers decide the limits explicitly.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	tagColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	tagNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Messages returned to clients.
const (
	MsgDuplicateIngredients = "duplicate ingredients are not allowed"
	MsgDuplicateTags        = "duplicate tags are not allowed"
	MsgNoIngredients        = "at least one ingredient is required"
	MsgNoTags               = "at least one tag is required"
	MsgImageRequired        = "image is required"
	MsgInvalidColor         = "value must be a HEX color code, for example #FF0000"
	MsgInvalidTagName       = "only letters, digits and underscore are allowed"
	MsgInvalidUsername      = "only letters, digits and @/./+/-/_ are allowed"
)

// Validator checks write payloads against a fixed set of rules.
type Validator struct {
	validate *validator.Validate
	rules    config.Rules
}

type userInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,username"`
}

type tagInput struct {
	Name  string `validate:"required,tagname"`
	Color string `validate:"required,tagcolor"`
	Slug  string `validate:"required,slug"`
}

// New builds a Validator for the given rules.
func New(rules config.Rules) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tagcolor", matches(tagColorPattern))
	_ = v.RegisterValidation("tagname", matches(tagNamePattern))
	_ = v.RegisterValidation("slug", matches(slugPattern))
	_ = v.RegisterValidation("username", matches(usernamePattern))
	return &Validator{validate: v, rules: rules}
}

// Rules returns the limits this validator enforces.
func (v *Validator) Rules() config.Rules {
	return v.rules
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// ValidateRecipe checks a create (requireImage) or update payload. Rules run
// before any storage access.
func (v *Validator) ValidateRecipe(req *types.RecipeWriteRequest, requireImage bool) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperr.Validation("name", "this field is required")
	}
	if len([]rune(name)) > v.rules.MaxRecipeNameLength {
		return apperr.Validation("name", fmt.Sprintf("must be at most %d characters", v.rules.MaxRecipeNameLength))
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperr.Validation("text", "this field is required")
	}
	if requireImage && strings.TrimSpace(req.Image) == "" {
		return apperr.Validation("image", MsgImageRequired)
	}

	if len(req.Ingredients) == 0 {
		return apperr.Validation("ingredients", MsgNoIngredients)
	}
	seen := make(map[uint]struct{}, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if _, dup := seen[item.ID]; dup {
			return apperr.Validation("ingredients", MsgDuplicateIngredients)
		}
		seen[item.ID] = struct{}{}
	}

	if err := v.ValidateCookingTime(req.CookingTime); err != nil {
		return err
	}
	for _, item := range req.Ingredients {
		if err := v.ValidateAmount(item.Amount); err != nil {
			return err
		}
	}

	if len(req.Tags) == 0 {
		return apperr.Validation("tags", MsgNoTags)
	}
	seenTags := make(map[uint]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return apperr.Validation("tags", MsgDuplicateTags)
		}
		seenTags[id] = struct{}{}
	}
	return nil
}

// ValidateCookingTime checks the inclusive cooking time range.
func (v *Validator) ValidateCookingTime(minutes int) error {
	if minutes < v.rules.MinCookingTime || minutes > v.rules.MaxCookingTime {
		return apperr.Validation("cooking_time", fmt.Sprintf(
			"cooking time must be between %d and %d minutes", v.rules.MinCookingTime, v.rules.MaxCookingTime))
	}
	return nil
}

// ValidateAmount checks the inclusive ingredient amount range.
func (v *Validator) ValidateAmount(amount int) error {
	if amount < v.rules.MinAmount || amount > v.rules.MaxAmount {
		return apperr.Validation("amount", fmt.Sprintf(
			"ingredient amount must be between %d and %d", v.rules.MinAmount, v.rules.MaxAmount))
	}
	return nil
}

// ValidateUser checks registration fields.
func (v *Validator) ValidateUser(req *types.RegisterRequest) error {
	if len(req.Username) > v.rules.MaxUsernameLength {
		return apperr.Validation("username", fmt.Sprintf("must be at most %d characters", v.rules.MaxUsernameLength))
	}
	if len(req.Email) > v.rules.MaxEmailLength {
		return apperr.Validation("email", fmt.Sprintf("must be at most %d characters", v.rules.MaxEmailLength))
	}
	if v.rules.ReservedUsername != "" && strings.EqualFold(req.Username, v.rules.ReservedUsername) {
		return apperr.Validation("username", fmt.Sprintf("username %q is reserved", req.Username))
	}
	return v.translate(v.validate.Struct(userInput{Email: req.Email, Username: req.Username}))
}

// ValidateTag checks tag name, color and slug formats.
func (v *Validator) ValidateTag(req *types.CreateTagRequest) error {
	if len(req.Name) > v.rules.MaxTagNameLength {
		return apperr.Validation("name", fmt.Sprintf("must be at most %d characters", v.rules.MaxTagNameLength))
	}
	return v.translate(v.validate.Struct(tagInput{Name: req.Name, Color: req.Color, Slug: req.Slug}))
}

// ValidateColor checks a single color code.
func (v *Validator) ValidateColor(color string) error {
	if !tagColorPattern.MatchString(color) {
		return apperr.Validation("color", MsgInvalidColor)
	}
	return nil
}

func (v *Validator) translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field, "this field is required")
	case "email":
		return apperr.Validation(field, "enter a valid email address")
	case "tagcolor":
		return apperr.Validation(field, MsgInvalidColor)
	case "tagname":
		return apperr.Validation(field, MsgInvalidTagName)
	case "username":
		return apperr.Validation(field, MsgInvalidUsername)
	case "slug":
		return apperr.Validation(field, "enter a valid slug")
	default:
		return apperr.Validation(field, fmt.Sprintf("failed on the %q rule", fe.Tag()))
	}
}
