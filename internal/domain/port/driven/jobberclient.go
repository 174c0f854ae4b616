package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// ErrNetwork is a transport-level failure reaching a provider. It is surfaced
// to the caller immediately; this layer never retries transport failures.
var ErrNetwork = errors.New("provider unreachable")

// ErrAuthRecovery means a stale access credential was detected but the
// refresh-and-retry recovery could not complete. The original request is not
// attempted again.
var ErrAuthRecovery = errors.New("credential recovery failed")

// RefreshError reports a rejected token exchange. Payload carries the
// provider's raw error response when one was received.
type RefreshError struct {
	Payload []byte
	Err     error
}

func (e *RefreshError) Error() string {
	if len(e.Payload) > 0 {
		return fmt.Sprintf("token refresh rejected: %s", e.Payload)
	}
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// JobberClient defines the driven port for the field-service GraphQL API.
// Query executes one GraphQL request with the current access credential,
// transparently recovering from a stale credential with a single
// refresh-and-retry. Application-level errors in the response body pass
// through in the ProxyResult untouched.
type JobberClient interface {
	Query(ctx context.Context, query string, variables map[string]any) (*model.ProxyResult, error)
}

// JobberAuth defines the driven port for the field-service OAuth token
// endpoint. Both operations are pure exchanges: neither commits anything to
// the TokenStore.
type JobberAuth interface {
	// Refresh exchanges the configured refresh credential for a new access
	// token. A response lacking an access_token field, or a transport
	// failure, yields a *RefreshError.
	Refresh(ctx context.Context) (string, error)

	// Exchange performs the authorization_code grant used for first-time
	// provisioning via the OAuth callback.
	Exchange(ctx context.Context, code string) (model.TokenPair, error)
}
