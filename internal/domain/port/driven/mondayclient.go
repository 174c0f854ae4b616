package driven

import (
	"context"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// MondayClient defines the driven port for the work-tracking board's GraphQL
// API. The board query is authored by the render layer; this port only adds
// the credential.
type MondayClient interface {
	Query(ctx context.Context, query string) (*model.ProxyResult, error)
}
