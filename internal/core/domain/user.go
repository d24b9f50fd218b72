package domain

// User models a platform account as returned by the upstream API. The
// console never mutates a user in place; the session holds whole replacement
// copies only.
type User struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	EmailVerifiedAt    *string  `json:"email_verified_at,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	PhoneVerifiedAt    *string  `json:"phone_verified_at,omitempty"`
	Bio                string   `json:"bio,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	ProfilePhoto       string   `json:"profile_photo,omitempty"`
	LastSeenAt         *string  `json:"last_seen_at,omitempty"`
	VerificationStatus string   `json:"verification_status,omitempty"`
	Country            string   `json:"country,omitempty"`
	City               string   `json:"city,omitempty"`
	Age                int      `json:"age,omitempty"`
	IsActive           bool     `json:"is_active,omitempty"`
	IsSuspended        bool     `json:"is_suspended,omitempty"`
	SuspensionReason   *string  `json:"suspension_reason,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
	Role               string   `json:"role,omitempty"`
}

// Clone returns a copy safe to hand to subscribers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Interests != nil {
		c.Interests = append([]string(nil), u.Interests...)
	}
	return &c
}
