// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citelink/pkg/types"
)

func TestDocumentID(t *testing.T) {
	tests := []struct {
		name string
		flag string
		path string
		want string
	}{
		{"from file name", "", "/papers/Attention Is All You Need.pdf", "Attention-Is-All-You-Need"},
		{"keeps dots and dashes", "", "arxiv-1706.03762v5.pdf", "arxiv-1706.03762v5"},
		{"flag wins", "vaswani2017", "/papers/a.pdf", "vaswani2017"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().String("doc", "", "")
			require.NoError(t, cmd.Flags().Set("doc", tt.flag))
			assert.Equal(t, tt.want, documentID(cmd, tt.path))
		})
	}
}

func TestSearchBackends(t *testing.T) {
	all, err := searchBackends(types.SearchConfig{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "semantic_scholar", all[0].Name())
	assert.Equal(t, "openalex", all[1].Name())

	one, err := searchBackends(types.SearchConfig{Backends: []string{" openalex "}})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "openalex", one[0].Name())

	_, err = searchBackends(types.SearchConfig{Backends: []string{"arxiv"}})
	assert.Error(t, err)
}

func TestSelectionExplicitLine(t *testing.T) {
	sel := selection(nil, 1, "[12]", "as shown in [12] and [13]", -1)
	require.NotNil(t, sel)
	assert.Equal(t, 12, sel.Offset)

	sel = selection(nil, 1, "[13]", "as shown in [12] and [13]", 3)
	assert.Equal(t, 3, sel.Offset)
}

func TestWriteFormatted(t *testing.T) {
	action := types.ResolverAction{Kind: types.ActionNavigate, Location: &types.Location{PageNumber: 4, Y: 120}}

	var buf bytes.Buffer
	require.NoError(t, writeFormatted(&buf, "yaml", action))
	assert.Contains(t, buf.String(), "kind: navigate")
	assert.Contains(t, buf.String(), "page_number: 4")

	buf.Reset()
	require.NoError(t, writeFormatted(&buf, "json", action))
	assert.Contains(t, buf.String(), `"kind": "navigate"`)

	assert.Error(t, writeFormatted(&buf, "toml", action))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "outline", "refs", "resolve", "lookup", "store", "version"} {
		assert.True(t, names[want], want)
	}
}
