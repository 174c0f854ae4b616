package driven

import (
	"context"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// OpenPhoneClient defines the driven port for the VoIP calling platform's
// REST API. Responses pass through to the render layer untouched.
type OpenPhoneClient interface {
	// ListPhoneNumbers returns the workspace phone numbers. The dashboard
	// calls this once to discover the phoneNumberId it filters calls by.
	ListPhoneNumbers(ctx context.Context) (*model.ProxyResult, error)

	// ListCalls returns calls created between q.StartTime and now,
	// newest first, limited to one page of 100.
	ListCalls(ctx context.Context, q model.CallQuery) (*model.ProxyResult, error)
}
