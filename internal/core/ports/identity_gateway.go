package ports

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/realspark/console-gateway/internal/core/domain"
)

// LoginResult is the well-formed success payload of the upstream login
// exchange. Role is the raw string as sent by the backend; parsing it onto
// the closed enumeration is the caller's job.
type LoginResult struct {
	Token     string
	User      *domain.User
	Role      string
	ExpiresAt time.Time // zero when the backend did not send one
}

// IdentityGateway performs the credential exchange against the upstream
// platform API. Implementations forward failures untouched; they never
// translate them into user-facing messages.
type IdentityGateway interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

// UpstreamResponse carries a proxied upstream reply verbatim.
type UpstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// FeatureGateway forwards console feature calls to the upstream API with the
// session's bearer token attached. The console owns none of the feature
// semantics; bodies pass through untouched.
type FeatureGateway interface {
	Forward(ctx context.Context, token, method, path string, query url.Values, body []byte) (*UpstreamResponse, error)
}
