package omnibus

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	// Greeting is the line written by PrintGreeting.
	Greeting = "Hello, World from Go!"

	// OwnedGreeting is the text a boundary allocates and transfers to its caller.
	OwnedGreeting = "Hello, World from a Go string!"

	hotdog = "hotdog"
)

// PrintGreeting writes Greeting and a newline to w.
func PrintGreeting(w io.Writer) {
	fmt.Fprintln(w, Greeting)
}

// ContainsHotdog reports whether s contains the literal substring "hotdog".
func ContainsHotdog(s string) bool {
	return strings.Contains(s, hotdog)
}

// CountGraphemes returns the number of user-perceived characters in s
// (Unicode extended grapheme clusters), not bytes or code points.
func CountGraphemes(s string) uint32 {
	return uint32(uniseg.GraphemeClusterCount(s))
}

// CountBytes returns the number of UTF-8 storage units in s.
func CountBytes(s string) uint32 {
	return uint32(len(s))
}

// Increment adds one to every element in place. Overflow wraps.
func Increment(xs []int32) {
	for i := range xs {
		xs[i]++
	}
}

// SumOfEven adds every even element. The sum wraps on overflow.
func SumOfEven(xs []uint32) uint32 {
	var sum uint32
	for _, v := range xs {
		if v%2 == 0 {
			sum += v
		}
	}
	return sum
}

// Tuple is a fixed-layout pair of two unsigned 32-bit integers, passed by value.
type Tuple struct {
	X uint32
	Y uint32
}

// FlipThingsAround returns (Y+1, X-1). Neither side is guarded: Y = MaxUint32
// wraps to 0 and X = 0 wraps to MaxUint32.
func FlipThingsAround(t Tuple) Tuple {
	return Tuple{X: t.Y + 1, Y: t.X - 1}
}
