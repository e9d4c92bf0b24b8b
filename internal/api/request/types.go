package request

// Login is the operator session login payload.
type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterUser creates a new registry user.
type RegisterUser struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// UpdateUser changes a user's handle.
type UpdateUser struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// CreateToken issues an API token for a user.
type CreateToken struct {
	Name        string  `json:"name" validate:"required,min=1,max=64"`
	Description *string `json:"description,omitempty"`
	AccessLevel int     `json:"access_level" validate:"min=0,max=2"`
}

// UpdateToken edits a token. Nil fields are left unchanged.
type UpdateToken struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	Description *string `json:"description,omitempty"`
	AccessLevel *int    `json:"access_level,omitempty" validate:"omitempty,min=0,max=2"`
}

// AddWhitelistEntry adds an origin to the allow-list.
type AddWhitelistEntry struct {
	Value string `json:"value" validate:"required,origin"`
}

// SetPolicy writes one policy key. Value is deliberately not "required":
// false and 0 are legitimate settings.
type SetPolicy struct {
	Value any `json:"value"`
}
