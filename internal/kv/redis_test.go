package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	t.Run("get existing key", func(t *testing.T) {
		mock.ExpectGet("savingsjars:goals").SetVal(`[{"id":"g1"}]`)

		value, err := store.Get(ctx, "savingsjars:goals")
		assert.NoError(t, err)
		assert.Equal(t, `[{"id":"g1"}]`, string(value))
	})

	t.Run("get missing key", func(t *testing.T) {
		mock.ExpectGet("savingsjars:safe").RedisNil()

		_, err := store.Get(ctx, "savingsjars:safe")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get failure", func(t *testing.T) {
		mock.ExpectGet("savingsjars:safe").SetErr(errors.New("connection refused"))

		_, err := store.Get(ctx, "savingsjars:safe")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("set", func(t *testing.T) {
		mock.ExpectSet("savingsjars:settings", []byte(`{}`), 0).SetVal("OK")

		assert.NoError(t, store.Set(ctx, "savingsjars:settings", []byte(`{}`)))
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectDel("savingsjars:goals", "savingsjars:safe").SetVal(2)

		assert.NoError(t, store.Delete(ctx, "savingsjars:goals", "savingsjars:safe"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
