package config

// Rules carries the business limits enforced by the validation layer.
type Rules struct {
	MinCookingTime int
	MaxCookingTime int
	MinAmount      int
	MaxAmount      int

	// ReservedUsername is rejected case-insensitively at registration.
	ReservedUsername string

	MaxRecipeNameLength int
	MaxTagNameLength    int
	MaxUsernameLength   int
	MaxEmailLength      int
	MaxPageSize         int
}

// DefaultRules returns the limits used by the storage schema.
func DefaultRules() Rules {
	return Rules{
		MinCookingTime:      1,
		MaxCookingTime:      180,
		MinAmount:           1,
		MaxAmount:           1000,
		ReservedUsername:    "me",
		MaxRecipeNameLength: 200,
		MaxTagNameLength:    100,
		MaxUsernameLength:   150,
		MaxEmailLength:      254,
		MaxPageSize:         100,
	}
}
