// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package titlecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/milize/pkg/titlecase"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"small words inside", "the tale of the moon", "The Tale of the Moon"},
		{"last word capitalised", "what it comes down to", "What It Comes down To"},
		{"acronym kept", "typesetting SFX", "Typesetting SFX"},
		{"irregular kept", "notes by mcKay", "Notes by mcKay"},
		{"hyphenated word", "re-drawing work", "Re-drawing Work"},
		{"digits untouched", "chapter 12 and on", "Chapter 12 and On"},
		{"no words", "123 456", "123 456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titlecase.Convert(tt.input))
		})
	}
}
