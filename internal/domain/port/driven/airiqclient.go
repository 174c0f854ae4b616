package driven

import (
	"context"
	"errors"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// ErrInvalidEndpoint is returned when the requested path does not look like
// a provider API path. The endpoint comes from the browser, so the proxy
// refuses anything that is not an absolute path on the provider host.
var ErrInvalidEndpoint = errors.New("fleet endpoint must be an absolute API path")

// AirIQClient defines the driven port for the fleet-telemetry REST API.
// Get issues an authenticated GET against the given API path (for example
// "/v1/vehicles") and passes the response through untouched.
type AirIQClient interface {
	Get(ctx context.Context, endpoint string) (*model.ProxyResult, error)
}
