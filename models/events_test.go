package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, e Event) RawEvent {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	var raw RawEvent
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestEventWireFormat(t *testing.T) {
	data, err := json.Marshal(ProductDeleted(1712345678901))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"productDeleted","data":1712345678901}`, string(data))

	data, err = json.Marshal(ProductsUpdated(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"productsUpdated","data":[]}`, string(data))
}

func TestDecodeEvent(t *testing.T) {
	seed := SeedProducts()

	t.Run("productsUpdated", func(t *testing.T) {
		e, err := DecodeEvent(roundTrip(t, ProductsUpdated(seed)))
		require.NoError(t, err)
		assert.Equal(t, EventProductsUpdated, e.Name)
		assert.Equal(t, seed, e.Data)
	})

	t.Run("productsUpdated null", func(t *testing.T) {
		e, err := DecodeEvent(RawEvent{Name: EventProductsUpdated, Data: json.RawMessage("null")})
		require.NoError(t, err)
		assert.Equal(t, []Product{}, e.Data)
	})

	t.Run("productAdded", func(t *testing.T) {
		e, err := DecodeEvent(roundTrip(t, ProductAdded(seed[2])))
		require.NoError(t, err)
		assert.Equal(t, seed[2], e.Data)
	})

	t.Run("productUpdated", func(t *testing.T) {
		e, err := DecodeEvent(roundTrip(t, ProductUpdated(seed[3])))
		require.NoError(t, err)
		assert.Equal(t, EventProductUpdated, e.Name)
		assert.Equal(t, seed[3], e.Data)
	})

	t.Run("productDeleted", func(t *testing.T) {
		e, err := DecodeEvent(roundTrip(t, ProductDeleted(1712345678901)))
		require.NoError(t, err)
		assert.Equal(t, int64(1712345678901), e.Data)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := DecodeEvent(RawEvent{Name: "productRenamed", Data: json.RawMessage("{}")})
		assert.Error(t, err)
	})

	t.Run("wrong payload", func(t *testing.T) {
		_, err := DecodeEvent(RawEvent{Name: EventProductDeleted, Data: json.RawMessage(`"abc"`)})
		assert.Error(t, err)
	})
}
