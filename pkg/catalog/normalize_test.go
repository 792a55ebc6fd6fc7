package catalog

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "super mario world", "super mario world"},
		{"case folding", "Super Mario World", "super mario world"},
		{"punctuation to spaces", "Super Mario Bros. 3", "super mario bros 3"},
		{"ampersand", "Kirby & The Amazing Mirror", "kirby and the amazing mirror"},
		{"plus sign", "Mario + Rabbids", "mario plus rabbids"},
		{"accents", "Pokémon Édition Rouge", "pokemon edition rouge"},
		{"trademark symbols", "Tetris™ © 1989", "tetris 1989"},
		{"whitespace collapse", "  The   Legend  of  Zelda ", "the legend of zelda"},
		{"hyphens and colons", "F-Zero: Maximum Velocity", "f zero maximum velocity"},
		{"digits kept", "007: GoldenEye", "007 goldeneye"},
		{"empty", "", ""},
		{"punctuation only", "!!! --- ...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Pokémon™ + Éditions & Co.",
		"Super Mario World",
		"007: GoldenEye",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent on %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"super mario world", []string{"super", "mario", "world"}},
		{"zelda", []string{"zelda"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokens(tt.input)
		if len(got) == 0 && len(tt.expected) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
