package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGuardrail() *guardrail.Guardrail {
	return &guardrail.Guardrail{
		ID:        "g-1",
		Name:      "PII",
		Category:  "privacy",
		Owner:     "alice",
		CreatedAt: 1700000000000,
		Rules: []guardrail.Rule{
			{ID: "r-1", Text: "Block emails", Status: guardrail.RuleStatusProposed},
		},
	}
}

func expectSave(mock redismock.ClientMock, data []byte, generation string, stored int64) {
	mock.ExpectEvalSha(cache.SaveIfCurrentHash,
		[]string{"guardrail:g-1", "guardrail:gen:g-1"},
		generation, string(data), "60000",
	).SetVal(stored)
}

func fill(t *testing.T, c cache.Client, mock redismock.ClientMock, g *guardrail.Guardrail, data []byte) {
	t.Helper()
	mock.ExpectGet("guardrail:gen:g-1").RedisNil()
	token, err := c.FillToken(context.Background(), g.ID)
	require.NoError(t, err)
	expectSave(mock, data, "0", 1)
	require.NoError(t, c.SaveGuardrail(context.Background(), g, token))
}

func TestClient_GuardrailRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	g := sampleGuardrail()
	data, err := json.Marshal(g)
	require.NoError(t, err)

	fill(t, c, mock, g, data)

	// served from the local layer, no redis round trip expected
	got, err := c.GetGuardrail(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, g.Name, got.Name)
	assert.Equal(t, guardrail.RuleStatusProposed, got.Rules[0].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_GetGuardrailFromRedis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	data, err := json.Marshal(sampleGuardrail())
	require.NoError(t, err)
	mock.ExpectGet("guardrail:g-1").SetVal(string(data))

	got, err := c.GetGuardrail(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Miss(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	mock.ExpectGet("guardrail:absent").RedisNil()
	_, err := c.GetGuardrail(ctx, "absent")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_RedisError(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	mock.ExpectGet("guardrail:g-1").SetErr(errors.New("connection reset"))
	_, err := c.GetGuardrail(ctx, "g-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)
}

func TestClient_Invalidate(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	g := sampleGuardrail()
	data, err := json.Marshal(g)
	require.NoError(t, err)
	fill(t, c, mock, g, data)

	mock.ExpectIncr("guardrail:gen:g-1").SetVal(1)
	mock.ExpectExpire("guardrail:gen:g-1", 24*time.Hour).SetVal(true)
	mock.ExpectDel("guardrail:g-1").SetVal(1)
	require.NoError(t, c.InvalidateGuardrail(ctx, "g-1"))

	mock.ExpectGet("guardrail:g-1").RedisNil()
	_, err = c.GetGuardrail(ctx, "g-1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ForgetLocal(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	g := sampleGuardrail()
	data, err := json.Marshal(g)
	require.NoError(t, err)
	fill(t, c, mock, g, data)

	c.ForgetLocal("g-1")
	mock.ExpectGet("guardrail:g-1").SetVal(string(data))
	_, err = c.GetGuardrail(ctx, "g-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_FillTokenReadsGeneration(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewClientFromRedis(db, time.Minute)

	mock.ExpectGet("guardrail:gen:g-1").SetVal("4")
	token, err := c.FillToken(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), token.Remote)

	mock.ExpectGet("guardrail:gen:g-1").SetErr(errors.New("connection reset"))
	_, err = c.FillToken(context.Background(), "g-1")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_StaleFillIsDropped(t *testing.T) {
	ctx := context.Background()
	g := sampleGuardrail()
	data, err := json.Marshal(g)
	require.NoError(t, err)

	t.Run("invalidated in redis", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewClientFromRedis(db, time.Minute)

		mock.ExpectGet("guardrail:gen:g-1").SetVal("2")
		token, err := c.FillToken(ctx, g.ID)
		require.NoError(t, err)

		expectSave(mock, data, "2", 0)
		assert.ErrorIs(t, c.SaveGuardrail(ctx, g, token), cache.ErrStaleFill)

		// nothing was kept locally either
		mock.ExpectGet("guardrail:g-1").RedisNil()
		_, err = c.GetGuardrail(ctx, g.ID)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("forgotten locally", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewClientFromRedis(db, time.Minute)

		mock.ExpectGet("guardrail:gen:g-1").RedisNil()
		token, err := c.FillToken(ctx, g.ID)
		require.NoError(t, err)

		c.ForgetLocal(g.ID)
		expectSave(mock, data, "0", 1)
		assert.ErrorIs(t, c.SaveGuardrail(ctx, g, token), cache.ErrStaleFill)

		mock.ExpectGet("guardrail:g-1").RedisNil()
		_, err = c.GetGuardrail(ctx, g.ID)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
