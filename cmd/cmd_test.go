package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/extraction"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "", "catalog")
		require.NoError(t, err)
		require.Contains(t, out, "  Passport\n")
		require.Contains(t, out, "    = Passeport\n")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "", "catalog", "--format", "json")
		require.NoError(t, err)

		var cat catalog.Catalog
		require.NoError(t, json.Unmarshal([]byte(out), &cat))
		require.NotEmpty(t, cat.Categories)
	})

	t.Run("yaml parses back", func(t *testing.T) {
		out, err := execute(t, "", "catalog", "--format", "yaml")
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &raw))
		require.Contains(t, raw, "categories")

		_, err = catalog.Parse([]byte(out))
		require.NoError(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "", "catalog", "--format", "toml")
		require.Error(t, err)
	})
}

func TestExtractCommand(t *testing.T) {
	text := "REPUBLIQUE FRANCAISE\nPASSPORT\nDate of issue: 12 JAN 2021\nDate of expiry: 11 JAN 2031\n"

	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, text, "extract", "--stdin", "--filename", "passport.pdf")
		require.NoError(t, err)

		var res extraction.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.NotEmpty(t, res.Title)
		require.Equal(t, "2021-01-12", res.IssuedOn)
		require.Equal(t, "2031-01-11", res.ExpiresOn)
		require.NoError(t, extraction.Validate(res))
	})

	t.Run("text file with explain", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "passport.txt")
		require.NoError(t, os.WriteFile(path, []byte(text), 0644))

		out, err := execute(t, "", "extract", "--text-file", path, "--explain")
		require.NoError(t, err)

		var exp extraction.Explanation
		require.NoError(t, json.Unmarshal([]byte(out), &exp))
		require.NotEmpty(t, exp.Result.Title)
	})

	t.Run("plain text file through the OCR router", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "passport.txt")
		require.NoError(t, os.WriteFile(path, []byte(text), 0644))

		out, err := execute(t, "", "extract", path)
		require.NoError(t, err)
		require.Contains(t, out, `"expiresOn": "2031-01-11"`)
	})

	t.Run("no input", func(t *testing.T) {
		_, err := execute(t, "", "extract")
		require.Error(t, err)
	})
}
