package matter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	require.Equal(t, KindNull, NullValue().Kind())
	require.Equal(t, KindBool, BoolValue(true).Kind())
	require.Equal(t, KindNumber, IntValue(3).Kind())
	require.Equal(t, KindNumber, FloatValue(3.5).Kind())
	require.Equal(t, KindString, StringValue("x").Kind())
	require.Equal(t, KindSequence, SequenceValue(nil).Kind())
	require.Equal(t, KindMapping, MapValue(NewMapping()).Kind())
}

func TestValueNumbers(t *testing.T) {
	i, ok := IntValue(42).Int()
	require.True(t, ok)
	require.Equal(t, int64(42), i)
	require.Equal(t, 42.0, IntValue(42).Float())

	_, ok = FloatValue(1.5).Int()
	require.False(t, ok)
	require.Equal(t, 1.5, FloatValue(1.5).Float())

	// Accessors of the wrong kind return zero values, never panic.
	_, ok = StringValue("7").Int()
	require.False(t, ok)
	require.Equal(t, "", IntValue(7).Str())
	require.Nil(t, StringValue("x").Map())
	require.Nil(t, StringValue("x").Seq())
}

func TestValueInterface(t *testing.T) {
	m := NewMapping()
	m.Set("n", IntValue(1))
	m.Set("s", StringValue("two"))
	v := SequenceValue([]Value{BoolValue(true), NullValue(), MapValue(m)})

	require.Equal(t, []any{true, nil, map[string]any{"n": int64(1), "s": "two"}}, v.Interface())
}

func TestValueMarshalJSON(t *testing.T) {
	m := NewMapping()
	m.Set("b", BoolValue(true))
	m.Set("a", FloatValue(2.5))
	v := SequenceValue([]Value{IntValue(1), StringValue("x"), MapValue(m), NullValue()})

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `[1,"x",{"b":true,"a":2.5},null]`, string(out))
}

func TestValueMarshalNonFiniteFloat(t *testing.T) {
	// JSON cannot carry NaN or infinities, so they degrade to null.
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		out, err := FloatValue(f).MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, "null", string(out))
	}
}

func TestMappingOrder(t *testing.T) {
	m := NewMapping()
	m.Set("z", IntValue(1))
	m.Set("a", IntValue(2))
	m.Set("m", IntValue(3))
	require.Equal(t, []string{"z", "a", "m"}, m.Keys())
	require.Equal(t, 3, m.Len())

	// Replacing a key keeps its original position.
	m.Set("a", IntValue(9))
	require.Equal(t, []string{"z", "a", "m"}, m.Keys())
	v, ok := m.Get("a")
	i, _ := v.Int()
	require.True(t, ok)
	require.Equal(t, int64(9), i)
}

func TestMappingDelete(t *testing.T) {
	m := NewMapping()
	m.Set("a", IntValue(1))
	m.Set("b", IntValue(2))
	m.Set("c", IntValue(3))

	m.Delete("b")
	require.Equal(t, []string{"a", "c"}, m.Keys())
	require.False(t, m.Has("b"))

	// Deleting an absent key is a no-op.
	m.Delete("missing")
	require.Equal(t, []string{"a", "c"}, m.Keys())
}

func TestMappingKeysIsCopy(t *testing.T) {
	m := NewMapping()
	m.Set("a", IntValue(1))
	m.Set("b", IntValue(2))

	keys := m.Keys()
	keys[0] = "mutated"
	require.Equal(t, []string{"a", "b"}, m.Keys())
}
