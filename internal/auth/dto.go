package auth

// SignupInput carries the signup form fields. Field names follow the form
// the storefront posts.
type SignupInput struct {
	Email        string `json:"email"`
	ConfirmEmail string `json:"confirm-email"`
	Password     string `json:"password"`
	Fullname     string `json:"fullname"`
	Street       string `json:"street"`
	Postal       string `json:"postal"`
	City         string `json:"city"`
}

// EnteredFields returns the non-password fields for flashing back to the
// form after a validation failure.
func (in SignupInput) EnteredFields() map[string]string {
	return map[string]string{
		"email":        in.Email,
		"confirmEmail": in.ConfirmEmail,
		"fullname":     in.Fullname,
		"street":       in.Street,
		"postal":       in.Postal,
		"city":         in.City,
	}
}

// LoginInput carries the login form fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
