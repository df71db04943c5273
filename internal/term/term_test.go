package term

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessors(t *testing.T) {
	s, err := String("abc").AsString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	n, err := Int(7).AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 7.0, n)

	b, err := Bool(true).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	items, err := List(Int(1), String("x")).AsList()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAccessorMismatch(t *testing.T) {
	tests := []struct {
		name string
		call func() error
	}{
		{"string from number", func() error { _, err := Int(1).AsString(); return err }},
		{"number from string", func() error { _, err := String("5").AsNumber(); return err }},
		{"int from bool", func() error { _, err := Bool(true).AsInt(); return err }},
		{"bool from string", func() error { _, err := String("true").AsBool(); return err }},
		{"list from string", func() error { _, err := String("x").AsList(); return err }},
		{"string from zero term", func() error { _, err := Term{}.AsString(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrArgumentType))
		})
	}
}

func TestAsIntTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		in   Term
		want int64
	}{
		{Float(5.9), 5},
		{Float(-5.9), -5},
		{Float(0.4), 0},
		{Int(-3), -3},
		{Float(1e300), math.MaxInt64},
		{Float(-1e300), math.MinInt64},
	}
	for _, tt := range tests {
		got, err := tt.in.AsInt()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %s", tt.in)
	}
}

func TestAsIntRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Float(f).AsInt()
		assert.ErrorIs(t, err, ErrNotFinite)
	}
}

func TestListIsImmutable(t *testing.T) {
	src := []Term{String("a"), String("b")}
	l := List(src...)
	src[0] = String("mutated")

	items, err := l.AsList()
	require.NoError(t, err)
	assert.Equal(t, "\"a\"", items[0].String())

	items[1] = String("also mutated")
	again, _ := l.AsList()
	assert.True(t, again[1].Equal(String("b")))
}

func TestEqual(t *testing.T) {
	assert.True(t, Int(3).Equal(Float(3)))
	assert.False(t, Int(3).Equal(String("3")))
	assert.True(t, List(Int(1), List(Bool(false))).Equal(List(Int(1), List(Bool(false)))))
	assert.False(t, List(Int(1)).Equal(List(Int(1), Int(2))))
}

func TestTermString(t *testing.T) {
	got := List(String("a"), Int(2), Float(2.5), Bool(true), List()).String()
	assert.Equal(t, `["a", 2, 2.5, true, []]`, got)
}

func TestFromGo(t *testing.T) {
	got, err := FromGo([]any{"abc", 5, 2.5, true, []any{uint8(1), []string{"x"}}})
	require.NoError(t, err)

	want := List(String("abc"), Int(5), Float(2.5), Bool(true), List(Int(1), List(String("x"))))
	assert.True(t, want.Equal(got), "got %s", got)
	assert.Equal(t, []any{"abc", int64(5), 2.5, true, []any{int64(1), []any{"x"}}}, got.Raw())

	_, err = FromGo(map[string]int{})
	assert.ErrorIs(t, err, ErrArgumentType)

	_, err = FromGo([]any{"ok", struct{}{}})
	assert.ErrorIs(t, err, ErrArgumentType)
}
