// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/milize/internal/core/series"
)

func TestSeriesJob_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"typesetting", "Typesetting"},
		{"typesetting (SFX)", "Typesetting (SFX)"},
		{"quality check of the final pages", "Quality Check of the Final Pages"},
		{"Translation", "Translation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, (&series.SeriesJob{Name: tt.name}).DisplayName())
		})
	}
}
