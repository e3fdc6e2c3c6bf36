package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/NeuralTrust/ConsensusSentry/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_JSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		data, err := json.Marshal(types.Ok("abc"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Ok":"abc"}`, string(data))

		var decoded types.Result[string]
		require.NoError(t, json.Unmarshal(data, &decoded))
		value, err := decoded.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "abc", value)
	})

	t.Run("err", func(t *testing.T) {
		data, err := json.Marshal(types.Err[string]("guardrail not found"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Err":"guardrail not found"}`, string(data))

		var decoded types.Result[string]
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, decoded.IsErr())
		_, err = decoded.Unwrap()
		var resultErr *types.ResultError
		require.True(t, errors.As(err, &resultErr))
		assert.Equal(t, "guardrail not found", resultErr.Reason)
	})

	t.Run("zero value does not encode", func(t *testing.T) {
		_, err := json.Marshal(types.Result[string]{})
		assert.Error(t, err)
	})

	t.Run("both cases rejected", func(t *testing.T) {
		var decoded types.Result[string]
		err := json.Unmarshal([]byte(`{"Ok":"a","Err":"b"}`), &decoded)
		assert.ErrorIs(t, err, types.ErrMalformedResult)
	})

	t.Run("unknown case rejected", func(t *testing.T) {
		var decoded types.Result[string]
		err := json.Unmarshal([]byte(`{"Maybe":"a"}`), &decoded)
		assert.ErrorIs(t, err, types.ErrMalformedResult)
	})
}
