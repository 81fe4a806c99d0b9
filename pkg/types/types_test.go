package types

import (
	"errors"
	"testing"
)

func TestGridValidate(t *testing.T) {
	tests := []struct {
		grid    Grid
		wantErr bool
	}{
		{Grid{1, 1}, false},
		{Grid{4, 10}, false},
		{Grid{0, 3}, true},
		{Grid{3, 0}, true},
		{Grid{-1, 2}, true},
	}

	for _, test := range tests {
		err := test.grid.Validate()
		if (err != nil) != test.wantErr {
			t.Errorf("Grid%v.Validate() error = %v, wantErr %v", test.grid, err, test.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Grid%v.Validate() should wrap ErrInvalidConfig, got %v", test.grid, err)
		}
	}
}

func TestChromaKeyParamsValidate(t *testing.T) {
	if err := DefaultChromaKeyParams().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	bad := []ChromaKeyParams{
		{Tolerance: -1},
		{Tolerance: 100.5},
		{Feather: -0.1},
		{Feather: 21},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate(%+v) = %v, expected ErrInvalidConfig", p, err)
		}
	}
}

func TestRGBHex(t *testing.T) {
	if got := (RGB{0, 255, 16}).Hex(); got != "#00ff10" {
		t.Errorf("Hex() = %s, expected #00ff10", got)
	}
}

func TestSizeString(t *testing.T) {
	if got := TabSize.String(); got != "96x74" {
		t.Errorf("TabSize.String() = %s", got)
	}
}
