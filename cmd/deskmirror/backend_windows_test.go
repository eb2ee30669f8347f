//go:build windows

package main

import (
	"errors"
	"testing"

	"github.com/go-ole/go-ole"
)

func TestComInitialized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ok", nil, true},
		{"already initialised", ole.NewError(sFalse), true},
		{"changed mode", ole.NewError(0x80010106), false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := comInitialized(tt.err); got != tt.want {
				t.Fatalf("comInitialized(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
