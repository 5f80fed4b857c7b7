package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selector is a compiled CSS selector list.
type Selector = cascadia.Selector

// Compile parses src.
func Compile(src string) (Selector, error) {
	s, err := cascadia.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("dom: parse %q: %w", src, err)
	}
	return s, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) Selector {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}
