package domain

import "time"

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username,omitempty"`
	AuthProvider    string     `json:"auth_provider,omitempty"`
	AuthSubject     string     `json:"-"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	OtpCodeHash     string     `json:"-"`
	OtpExpiresAt    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Verified reports whether the user confirmed their email, either by OTP or through an identity provider.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Name is what reports and emails greet the user with.
func (u User) Name() string {
	if u.Username != "" {
		return u.Username
	}
	return "User"
}
