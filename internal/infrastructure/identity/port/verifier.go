package port

import "errors"

// Verifier is the identity collaborator: it turns an opaque credential into
// an authenticated user id. Credential issuance and user management live
// outside this service.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

// ErrInvalidCredential is returned for absent, malformed or expired
// credentials. The gateway rejects the handshake without registering
// presence.
var ErrInvalidCredential = errors.New("identity: invalid credential")
