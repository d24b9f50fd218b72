package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrRoleNotAllowed = errors.New("account role not permitted on this console")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrAdminRequired = errors.New("admin access required")
var ErrLoginInFlight = errors.New("a login attempt is already in progress")
var ErrMalformedLoginPayload = errors.New("login response missing token, user or role")
