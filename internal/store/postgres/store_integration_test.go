//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ekyc-engine/internal/store"
	"ekyc-engine/internal/store/postgres"
	"ekyc-engine/pkg/testutil/containers"
)

func TestStore_InsertAndExists(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, pg.Truncate(ctx))

	s := postgres.New(pg.DB)

	exists, err := s.ExistsUser(ctx, "ID1", "Alice")
	require.NoError(t, err)
	require.False(t, exists)

	fields := store.UserFields{
		IdentityNumber: "ID1",
		Name:           "Alice",
		DocType:        "passport",
		DateOfIssue:    "2020-01-01",
		DateOfExpiry:   "2030-01-01",
		Address:        "1 Main St",
	}
	ok, err := s.InsertUser(ctx, fields)
	require.NoError(t, err)
	require.True(t, ok)

	exists, err = s.ExistsUser(ctx, "ID1", "Alice")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestStore_InsertUser_DuplicateReturnsFalse(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, pg.Truncate(ctx))

	s := postgres.New(pg.DB)
	fields := store.UserFields{IdentityNumber: "ID2", Name: "Bob", DocType: "id_card"}

	ok, err := s.InsertUser(ctx, fields)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.InsertUser(ctx, fields)
	require.NoError(t, err)
	require.False(t, ok)
}
