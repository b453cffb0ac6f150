package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/logx"
	"codeagents/pkg/utils"
)

func TestDigestFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("console.log(1)"), 0o644))

	logger := logx.NewLoggerTo("test", io.Discard)
	digests := digestFiles(dir, []string{"index.html", "js/app.js", "missing.css"}, logger)

	require.Len(t, digests, 2)
	assert.Equal(t, utils.ContentDigest([]byte("<html></html>")), digests["index.html"])
	assert.Equal(t, utils.ContentDigest([]byte("console.log(1)")), digests["js/app.js"])
	assert.NotContains(t, digests, "missing.css")
}
