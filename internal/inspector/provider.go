package inspector

import (
	"context"

	"github.com/probelab/page-resource-inspector/internal/model"
)

// PageInspector defines the contract for any inspection engine.
type PageInspector interface {
	Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error)
}
