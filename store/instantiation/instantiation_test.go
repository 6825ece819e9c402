package instantiation

import (
	"context"
	"testing"

	"creditagency/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTake(t *testing.T) {
	ctx := context.Background()

	database := db.MustOpen(db.SqliteInMemory())
	defer database.Close()
	database.Update().DB().SetMaxOpenConns(1)
	database.View().DB().SetMaxOpenConns(1)
	require.Nil(t, db.Migrate(database))

	s := New(database)

	x := &core.Instantiation{Token: core.NativeToken("x")}
	y := &core.Instantiation{Token: core.ContractToken("y")}
	require.Nil(t, s.Create(ctx, x))
	require.Nil(t, s.Create(ctx, y))
	require.NotZero(t, x.ID)
	assert.NotEqual(t, x.ID, y.ID)

	inst, err := s.Take(ctx, y.ID)
	require.Nil(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, core.ContractToken("y"), inst.Token)

	// a correlation id is taken once
	inst, err = s.Take(ctx, y.ID)
	require.Nil(t, err)
	assert.Nil(t, inst)

	inst, err = s.Take(ctx, x.ID+y.ID+1)
	require.Nil(t, err)
	assert.Nil(t, inst)

	inst, err = s.Take(ctx, x.ID)
	require.Nil(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, core.NativeToken("x"), inst.Token)
}
