package gatesdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("absent field is unset", func(t *testing.T) {
		var req UpdateInviteRequest
		require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
		require.False(t, req.ExpiresAt.IsSet())
		require.False(t, req.MaxUses.IsSet())
	})

	t.Run("explicit null is set and null", func(t *testing.T) {
		var req UpdateInviteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"expires_at": null}`), &req))
		require.True(t, req.ExpiresAt.IsSet())
		require.True(t, req.ExpiresAt.IsNull())
		require.False(t, req.MaxUses.IsSet())
	})

	t.Run("value is set with value", func(t *testing.T) {
		var req UpdateInviteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"max_uses": 5}`), &req))
		require.True(t, req.MaxUses.IsSet())
		require.False(t, req.MaxUses.IsNull())
		require.EqualValues(t, 5, *req.MaxUses.Value())
	})
}

func TestOptionalMarshal(t *testing.T) {
	t.Parallel()

	t.Run("unset fields stay off the wire", func(t *testing.T) {
		buf, err := json.Marshal(UpdateInviteRequest{})
		require.NoError(t, err)
		require.JSONEq(t, `{}`, string(buf))
	})

	t.Run("null and value round trip", func(t *testing.T) {
		req := UpdateInviteRequest{
			ExpiresAt: Null[int64](),
			MaxUses:   Some[int64](3),
		}
		buf, err := json.Marshal(req)
		require.NoError(t, err)
		require.JSONEq(t, `{"expires_at": null, "max_uses": 3}`, string(buf))

		var decoded UpdateInviteRequest
		require.NoError(t, json.Unmarshal(buf, &decoded))
		require.True(t, decoded.ExpiresAt.IsNull())
		require.EqualValues(t, 3, *decoded.MaxUses.Value())
	})
}
