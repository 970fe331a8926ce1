package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/apperrors"
)

type stubConnection struct {
	config map[string]any
}

func (s *stubConnection) TestConnection(ctx context.Context) error { return nil }
func (s *stubConnection) Close() error                             { return nil }
func (s *stubConnection) Dialect() Dialect                         { return DialectTSQL }
func (s *stubConnection) ListBaseTables(ctx context.Context) ([]TableMetadata, error) {
	return nil, nil
}
func (s *stubConnection) ListColumns(ctx context.Context, schemaName string) ([]ColumnMetadata, error) {
	return nil, nil
}
func (s *stubConnection) Query(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error) {
	return &QueryExecutionResult{}, nil
}

func registerStub(t *testing.T, dsType string) {
	t.Helper()
	Register(DatasourceAdapterRegistration{
		Info: DatasourceAdapterInfo{Type: dsType, DisplayName: "Stub"},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (Connection, error) {
			return &stubConnection{config: config}, nil
		},
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, dsType)
		registryMu.Unlock()
	})
}

func TestNewConnection_UsesRegisteredFactory(t *testing.T) {
	registerStub(t, "stub")

	conn, err := NewConnection(context.Background(), "stub", map[string]any{"host": "db"}, zap.NewNop())
	require.NoError(t, err)

	stub, ok := conn.(*stubConnection)
	require.True(t, ok)
	assert.Equal(t, "db", stub.config["host"])
	assert.Equal(t, DialectTSQL, conn.Dialect())
}

func TestNewConnection_UnknownType(t *testing.T) {
	_, err := NewConnection(context.Background(), "oracle", nil, zap.NewNop())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDatasource)
	assert.Contains(t, err.Error(), "oracle")
}

func TestRegistry_ListsSortedAdapters(t *testing.T) {
	registerStub(t, "zz-stub")
	registerStub(t, "aa-stub")

	assert.True(t, IsRegistered("aa-stub"))
	assert.False(t, IsRegistered("missing"))

	var types []string
	for _, info := range RegisteredAdapters() {
		types = append(types, info.Type)
	}
	assert.Less(t, indexOf(types, "aa-stub"), indexOf(types, "zz-stub"))
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
