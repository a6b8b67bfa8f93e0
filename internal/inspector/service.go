package inspector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/probelab/page-resource-inspector/internal/model"
	"github.com/probelab/page-resource-inspector/internal/platform/errs"
	"github.com/probelab/page-resource-inspector/internal/platform/requestid"
	"github.com/probelab/page-resource-inspector/internal/platform/telemetry"
)

// Service orchestrates a PageInspector and logs results.
type Service struct {
	provider PageInspector
	logger   *zap.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider PageInspector, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Inspect delegates to the provider and logs the outcome.
func (s *Service) Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error) {
	logger := s.logger.With(
		zap.String("url", targetURL),
		zap.String("request_id", requestid.FromContext(ctx)),
	)

	report, err := s.provider.Inspect(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Inspection timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		fields := []zap.Field{zap.Error(err)}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			fields = append(fields, zap.Int("target_status", appErr.UpstreamStatus))
		}
		logger.Error("inspection failed", fields...)
		telemetry.ObserveInspection("error")
		return nil, err
	}

	failed := 0
	for _, res := range report.Resources {
		if res.Error != nil {
			failed++
		}
	}
	logger.Info("inspection complete",
		zap.Int("main_status", report.Main.Status),
		zap.Int("resources", len(report.Resources)),
		zap.Int("failed_probes", failed),
	)
	telemetry.ObserveInspection("ok")
	return report, nil
}
