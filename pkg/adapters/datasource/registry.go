package datasource

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DatasourceAdapterInfo describes a registered adapter.
type DatasourceAdapterInfo struct {
	Type        string `json:"type"`         // "mssql"
	DisplayName string `json:"display_name"` // "Microsoft SQL Server"
	Description string `json:"description"`
}

// ConnectionFactory opens a Connection from an adapter-specific config map.
type ConnectionFactory func(ctx context.Context, config map[string]any, logger *zap.Logger) (Connection, error)

// DatasourceAdapterRegistration contains info + factory for creating connections.
type DatasourceAdapterRegistration struct {
	Info    DatasourceAdapterInfo
	Factory ConnectionFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DatasourceAdapterRegistration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg DatasourceAdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []DatasourceAdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DatasourceAdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the factory for a datasource type.
// Returns nil if type is not registered.
func GetFactory(dsType string) ConnectionFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}
