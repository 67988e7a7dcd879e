// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package messaging

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	rest := func(status int) error {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
	}

	tests := []struct {
		name string
		err  error
		gone bool
	}{
		{"not_found", rest(http.StatusNotFound), true},
		{"forbidden", rest(http.StatusForbidden), true},
		{"server_error", rest(http.StatusBadGateway), false},
		{"network", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Error(t, err)
			assert.Equal(t, tt.gone, IsGone(err))
			if tt.gone {
				assert.NoError(t, IgnoreGone(err))
			} else {
				assert.Error(t, IgnoreGone(err))
			}
		})
	}

	assert.NoError(t, classify(nil))
}
