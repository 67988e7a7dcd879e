// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"migrate", "sweep", "publish", "token"})

	sweep, _, err := root.Find([]string{"sweep", "inactivity"})
	require.NoError(t, err)
	assert.Equal(t, "inactivity", sweep.Name())
}

func TestTokenMint_RejectsBadInputBeforeLoadingConfig(t *testing.T) {
	for _, args := range [][]string{
		{"token", "mint", "not-an-id"},
		{"token", "mint", "123456789012345678", "--authority", "admiral"},
	} {
		root := newRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.Execute(), args)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Outcome", "Collaborators"}, [][]string{{"retired", "3"}, {"short"}}, 1)
	assert.Contains(t, out, "Outcome")
	assert.Contains(t, out, "retired")
	assert.Contains(t, out, "short")
	assert.NotContains(t, out, "<nil>", "short rows pad with blanks")
	assert.Empty(t, renderTable(nil, nil))
}
