// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/milize/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: 20}},
		{"explicit", "?page=3&limit=50", pagination.Params{Page: 3, Limit: 50}},
		{"clamped", "?page=-2&limit=1000", pagination.Params{Page: 1, Limit: 20}},
		{"garbage", "?page=x&limit=y", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/publications"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

func TestNewMeta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 20}
	assert.Equal(t, 40, params.Offset()+20)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, pagination.NewMeta(params, 41))
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{3, 4}, pagination.Window(items, pagination.Params{Page: 2, Limit: 2}))
	assert.Equal(t, []int{5}, pagination.Window(items, pagination.Params{Page: 3, Limit: 2}))
	assert.Empty(t, pagination.Window(items, pagination.Params{Page: 9, Limit: 2}))
}
