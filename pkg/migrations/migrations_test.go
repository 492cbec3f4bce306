package migrations

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisterSchema(t *testing.T) {
	m := NewManager(nil, nil)
	m.RegisterSchema("crm", fstest.MapFS{"00001_crm.sql": {Data: []byte("-- +goose Up\n")}})
	m.RegisterSchema("billing", fstest.MapFS{})

	schemas := m.Schemas()
	require.Len(t, schemas, 2)
	assert.Equal(t, "crm", schemas[0].Module)
	assert.Equal(t, "goose_crm_version", schemas[0].table())

	schemas[0].Module = "changed"
	assert.Equal(t, "crm", m.Schemas()[0].Module, "Schemas returns a copy")
}

func TestManager_RequiresPool(t *testing.T) {
	m := NewManager(nil, nil)
	m.RegisterSchema("crm", fstest.MapFS{})

	ctx := context.Background()
	assert.Error(t, m.Up(ctx))
	assert.Error(t, m.Down(ctx))
	_, err := m.Status(ctx)
	assert.Error(t, err)
}

func TestManager_NoSchemasIsNoop(t *testing.T) {
	m := NewManager(nil, nil)
	require.NoError(t, m.Up(context.Background()))
	statuses, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
