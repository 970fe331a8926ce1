package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
)

// NewConnection opens a connection using the adapter registered for dsType.
func NewConnection(ctx context.Context, dsType string, config map[string]any, logger *zap.Logger) (Connection, error) {
	factory := GetFactory(dsType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s (not compiled in)", apperrors.ErrUnsupportedDatasource, dsType)
	}
	return factory(ctx, config, logger)
}
