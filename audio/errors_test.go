// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidDstSize, "dst size must be multiple of channels"},
		{ErrUnknownFormat, "no decoder registered for format"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("open jingle.flac: %w", ErrUnknownFormat)
	if !errors.Is(wrapped, ErrUnknownFormat) {
		t.Error("errors.Is() failed for wrapped ErrUnknownFormat")
	}
	if errors.Is(wrapped, ErrInvalidDstSize) {
		t.Error("errors.Is() matched an unrelated sentinel")
	}
}
