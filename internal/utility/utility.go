package utility

import (
	"fmt"
	"math/rand"
)

// RandomColorHex returns a display color in #rrggbb form. Components stay
// in [4, 251] so assigned colors never collapse into pure black or white.
func RandomColorHex() string {
	r := 4 + rand.Intn(248)
	g := 4 + rand.Intn(248)
	b := 4 + rand.Intn(248)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
