package omnibus

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ffi-omnibus/errors"
)

func TestPrintGreeting(t *testing.T) {
	var buf bytes.Buffer
	PrintGreeting(&buf)
	assert.Equal(t, Greeting+"\n", buf.String())
}

func TestContainsHotdog(t *testing.T) {
	assert.True(t, ContainsHotdog("I love hotdogs"))
	assert.True(t, ContainsHotdog(`This string has "hotdog" in it`))
	assert.False(t, ContainsHotdog("I love burgers"))
	assert.False(t, ContainsHotdog("hot dog"))
	assert.False(t, ContainsHotdog("HOTDOG"))
	assert.False(t, ContainsHotdog(""))
}

func TestCountGraphemesAndBytes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		graphemes uint32
		bytes     uint32
	}{
		{"empty", "", 0, 0},
		{"ascii", "hello", 5, 5},
		{"precomposed accents", "g\u00f6es to \u00e9lev\u00ean", 14, 17},
		{"combining mark", "e\u0301", 1, 3},
		{"zwj family", "\U0001F468\u200d\U0001F469\u200d\U0001F467", 1, 18},
		{"regional indicator flag", "\U0001F1E9\U0001F1EA", 1, 8},
		{"crlf", "\r\n", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.graphemes, CountGraphemes(tt.in))
			assert.Equal(t, tt.bytes, CountBytes(tt.in))
		})
	}
}

func TestCountBytesNeverBelowGraphemes(t *testing.T) {
	samples := []string{
		"", "plain ascii", "g\u00f6es to \u00e9lev\u00ean", "a\u0308\u0301",
		"\U0001F44D\U0001F3FD", "\u65e5\u672c\u8a9e", "mixed \U0001F600 text",
	}
	for _, s := range samples {
		b, g := CountBytes(s), CountGraphemes(s)
		assert.GreaterOrEqual(t, b, g, "%q", s)

		ascii := true
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				ascii = false
			}
		}
		if ascii {
			assert.Equal(t, b, g, "%q", s)
		} else {
			assert.Greater(t, b, g, "%q", s)
		}
	}
}

func TestIncrement(t *testing.T) {
	xs := []int32{1, 2, 3}
	Increment(xs)
	assert.Equal(t, []int32{2, 3, 4}, xs)

	empty := []int32{}
	Increment(empty)
	assert.Empty(t, empty)

	edge := []int32{math.MaxInt32, -1}
	Increment(edge)
	assert.Equal(t, []int32{math.MinInt32, 0}, edge)
}

func TestSumOfEven(t *testing.T) {
	assert.Equal(t, uint32(12), SumOfEven([]uint32{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, uint32(0), SumOfEven(nil))
	assert.Equal(t, uint32(0), SumOfEven([]uint32{1, 3, 5}))
	assert.Equal(t, uint32(0), SumOfEven([]uint32{math.MaxUint32 - 1, 2}), "wraps on overflow")
}

func TestFlipThingsAround(t *testing.T) {
	assert.Equal(t, Tuple{X: 11, Y: 4}, FlipThingsAround(Tuple{X: 5, Y: 10}))
	assert.Equal(t, Tuple{X: 21, Y: 9}, FlipThingsAround(Tuple{X: 10, Y: 20}))
	assert.Equal(t, Tuple{X: 1, Y: 2}, FlipThingsAround(Tuple{X: 3, Y: 0}))

	// X = 0 underflows to the largest uint32.
	assert.Equal(t, Tuple{X: 4, Y: math.MaxUint32}, FlipThingsAround(Tuple{X: 0, Y: 3}))
	// Y = MaxUint32 overflows to 0.
	assert.Equal(t, Tuple{X: 0, Y: 6}, FlipThingsAround(Tuple{X: 7, Y: math.MaxUint32}))
}

func TestValidateText(t *testing.T) {
	assert.Equal(t, "caf\u00e9", ValidateText("byte_count", "caf\u00e9"))

	defer func() {
		err, ok := recover().(*errors.Error)
		require.True(t, ok)
		assert.Equal(t, errors.KindInvalidUTF8, err.Kind)
		assert.Equal(t, "grapheme_count", err.Op)
	}()
	ValidateText("grapheme_count", "bad\xc3")
	t.Fatal("invalid UTF-8 was accepted")
}

func TestReferenceCollaborator(t *testing.T) {
	var c Collaborator = ReferenceCollaborator{}

	assert.Equal(t, int32(8), c.DoubleInput(4))
	assert.Equal(t, int32(-6), c.DoubleInput(-3))
	assert.Equal(t, int32(math.MaxInt32-1), c.DoubleInput(math.MaxInt32/2))
	assert.Equal(t, int32(0), c.DoubleInput(math.MaxInt32/2+1))

	xs := []int32{0, 1, 2, 3, 4, 5, 6, 7}
	c.IncrementArray(xs)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6, 7, 8}, xs)

	guarded := []int32{1, math.MaxInt32 - 1, 5}
	c.IncrementArray(guarded)
	assert.Equal(t, []int32{2, math.MaxInt32 - 1, 5}, guarded)
}
