package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/adapters/datasource"
)

// Type is the registry key for SQL Server datasources.
const Type = "mssql"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        Type,
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2019+, Azure SQL Database",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.Connection, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg, logger)
		},
	})
}
