package dynform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	dynform "github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func TestGetConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"subject": {"type": "String", "name": "Subject", "required": true, "writable": true},
		"createdAt": {"type": "DateTime", "writable": false}
	}`), 0o644))

	src, err := dynform.ParseSource(path)
	require.NoError(t, err)
	require.Equal(t, schema.SourceKindFile, src.Kind())

	fields, err := dynform.GetConfig(context.Background(), nil, src, map[string]any{"subject": "Hello"})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.Equal(t, "Hello", fields[0].PayloadValue)

	f := dynform.NewForm(fields, map[string]any{"subject": "Hello"})
	require.Equal(t, "Hello", f.Get("subject").Value())
}

func TestParseSourceURL(t *testing.T) {
	src, err := dynform.ParseSource("https://example.com/api/v3/work_packages/form")
	require.NoError(t, err)
	require.Equal(t, schema.SourceKindURL, src.Kind())
}
