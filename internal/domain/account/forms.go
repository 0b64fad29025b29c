package account

import "regexp"

var (
	emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)
	otpRegex   = regexp.MustCompile(`^\d{6}$`)
)

const MinPasswordLength = 6

type RegisterForm struct {
	Username string `json:"username" form:"username"`
	FullName string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate returns the first problem as a user-facing message, or "".
func (f RegisterForm) Validate() string {
	switch {
	case f.Username == "":
		return "Username is required"
	case f.FullName == "":
		return "Full name is required"
	case f.Email == "":
		return "Email is required"
	case !emailRegex.MatchString(f.Email):
		return "Invalid email format"
	case f.Password == "":
		return "Password is required"
	case len(f.Password) < MinPasswordLength:
		return "Password must be at least 6 characters"
	}
	return ""
}

// LoginForm accepts a username or an email in Username.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (f LoginForm) Validate() string {
	if f.Username == "" || f.Password == "" {
		return "All fields are required"
	}
	return ""
}

type VerifyOTPForm struct {
	Email string `json:"email" form:"-"`
	OTP   string `json:"otp" form:"otp"`
}

func (f VerifyOTPForm) Validate() string {
	switch {
	case f.OTP == "":
		return "Please enter OTP"
	case !otpRegex.MatchString(f.OTP):
		return "Invalid OTP. Enter 6 digits."
	}
	return ""
}

type ForgotPasswordForm struct {
	Email string `json:"email" form:"email"`
}

func (f ForgotPasswordForm) Validate() string {
	switch {
	case f.Email == "":
		return "Email is required"
	case !emailRegex.MatchString(f.Email):
		return "Invalid email format"
	}
	return ""
}

type ResetPasswordForm struct {
	Email           string `json:"email" form:"-"`
	OTP             string `json:"otp" form:"otp"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (f ResetPasswordForm) Validate() string {
	switch {
	case f.OTP == "":
		return "OTP is required"
	case !otpRegex.MatchString(f.OTP):
		return "OTP must be 6 digits"
	case f.NewPassword == "":
		return "New password is required"
	case f.NewPassword != f.ConfirmPassword:
		return "Passwords do not match"
	}
	return ""
}
