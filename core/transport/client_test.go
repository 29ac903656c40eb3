package transport

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBridge writes a shell script standing in for the bridge binary.
func fakeBridge(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bridge")
	script := "#!/bin/sh\ncat >/dev/null\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCall_Success(t *testing.T) {
	t.Parallel()

	path := fakeBridge(t, `echo '{"id":"x","result":{"key":"PROJ-1"},"error":null}'`)
	client := NewClient(path)

	result, err := client.Call(context.Background(), "create_issue", map[string]string{"summary": "hi"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"PROJ-1"}`, string(result))
}

func TestCall_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	path := fakeBridge(t, `echo '{"id":"x","result":null,"error":{"message":"Unsupported platform: asana"}}'`)
	client := NewClient(path)

	_, err := client.Call(context.Background(), "search_issues", nil)

	require.Error(t, err)
	assert.Equal(t, "Unsupported platform: asana", err.Error())
}

func TestCall_SkipsNoiseAroundEnvelope(t *testing.T) {
	t.Parallel()

	path := fakeBridge(t, `echo 'warming up'
echo '{"id":"x","result":[1,2],"error":null}'`)
	client := NewClient(path)

	result, err := client.Call(context.Background(), "search_issues", nil)

	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(result))
}

func TestCall_NoResponse(t *testing.T) {
	t.Parallel()

	path := fakeBridge(t, `true`)
	client := NewClient(path)

	_, err := client.Call(context.Background(), "search_issues", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge produced no response")
}

func TestCall_MissingBinary(t *testing.T) {
	t.Parallel()

	client := NewClient(filepath.Join(t.TempDir(), "absent"))

	_, err := client.Call(context.Background(), "search_issues", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running bridge")
}

func TestCall_StderrPassesThrough(t *testing.T) {
	t.Parallel()

	path := fakeBridge(t, `echo '[INFO] issue bridge ready' >&2
echo '{"id":"x","result":"ok","error":null}'`)

	var diag bytes.Buffer
	client := &Client{BinaryPath: path, Stderr: &diag}

	_, err := client.Call(context.Background(), "has_required_config", nil)

	require.NoError(t, err)
	assert.Contains(t, diag.String(), "[INFO] issue bridge ready")
}
