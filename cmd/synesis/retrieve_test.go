// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"unicode/utf8"
)

func TestClipMultibyte(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"fits", 10, "fits"},
		{"a longer ascii chunk of text", 10, "a longe..."},
		{"Überraschungsmaße in der Ökonomie", 10, "Überras..."},
		{"量子もつれとテンソルネットワーク", 10, "量子もつれとテ..."},
	}
	for _, tt := range tests {
		got := clip(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("clip(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
		}
	}
}
