package domain

// AuthState is the console's view of the operator session. It is published
// as a single value: consumers either see the whole session or none of it.
type AuthState struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"-"`
	Role  Role   `json:"role,omitempty"`
}

// EmptyAuthState is the unauthenticated state published at bootstrap and
// after logout.
func EmptyAuthState() AuthState { return AuthState{} }

// IsAuthenticated reports whether the state carries a complete session.
// Token, user and role must all be present; a partial session never counts.
func (s AuthState) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil && s.Role != ""
}

// IsAdmin reports whether the session belongs to an administrator.
func (s AuthState) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == RoleAdmin
}

// IsWriter reports whether the session belongs to a writer account.
func (s AuthState) IsWriter() bool {
	return s.IsAuthenticated() && s.Role == RoleWriter
}

// Clone returns a deep copy so subscribers cannot alias the container's user.
func (s AuthState) Clone() AuthState {
	return AuthState{User: s.User.Clone(), Token: s.Token, Role: s.Role}
}
