package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdiagram/internal/diagram"
)

func TestAttributeService_CreateAttribute(t *testing.T) {
	f := newFixture()
	svc := NewAttributeService(f.attrs, f.entities, f.diagrams)
	ctx := context.Background()

	a, err := svc.CreateAttribute(ctx, AttributeRequest{
		EntityID:     f.order.ID.String(),
		Name:         "number",
		IsPrimaryKey: true,
		IsNullable:   true,
	})
	require.NoError(t, err)
	assert.True(t, a.IsUnique, "primary key implies unique")
	assert.False(t, a.IsNullable, "primary key implies not null")
	assert.Equal(t, diagram.TypeString, a.DataType)
	assert.Empty(t, f.schemaCode())

	second, err := svc.CreateAttribute(ctx, AttributeRequest{EntityID: f.order.ID.String(), Name: "total", DataType: diagram.TypeDecimal})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Ordinal)
}

func TestAttributeService_CreateAttribute_Errors(t *testing.T) {
	f := newFixture()
	svc := NewAttributeService(f.attrs, f.entities, f.diagrams)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     AttributeRequest
		wantErr error
	}{
		{name: "no entity", req: AttributeRequest{Name: "x"}, wantErr: ErrInvalidInput},
		{name: "unknown entity", req: AttributeRequest{EntityID: uuid.NewString(), Name: "x"}, wantErr: ErrNotFound},
		{name: "blank name", req: AttributeRequest{EntityID: f.order.ID.String(), Name: " "}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAttribute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAttributeService_UpdateAttribute(t *testing.T) {
	f := newFixture()
	svc := NewAttributeService(f.attrs, f.entities, f.diagrams)
	ctx := context.Background()

	a, err := svc.UpdateAttribute(ctx, f.userID.ID.String(), AttributeRequest{
		Name:       "user_id",
		DataType:   diagram.TypeUUID,
		IsNullable: true,
		Comment:    strPtr("surrogate key"),
	})
	require.NoError(t, err)
	assert.Equal(t, "user_id", a.Name)
	assert.False(t, a.IsPrimaryKey)
	assert.True(t, a.IsNullable, "clearing the primary key leaves the flags as given")
	assert.Equal(t, f.user.ID, a.EntityID)
	assert.Empty(t, f.schemaCode())

	_, err = svc.UpdateAttribute(ctx, uuid.NewString(), AttributeRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttributeService_DeleteAttribute(t *testing.T) {
	f := newFixture()
	svc := NewAttributeService(f.attrs, f.entities, f.diagrams)
	ctx := context.Background()

	require.NoError(t, svc.DeleteAttribute(ctx, f.userID.ID.String()))
	assert.Empty(t, f.db.attributes)
	assert.Empty(t, f.schemaCode())
	assert.ErrorIs(t, svc.DeleteAttribute(ctx, f.userID.ID.String()), ErrNotFound)
}
