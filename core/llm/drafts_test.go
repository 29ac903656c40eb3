package llm

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDraft_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	proposals := []ProposedIssue{
		{Index: 0, Title: "first", Description: "do it", Dependency: -1},
		{Index: 1, Title: "second", Dependency: 0},
	}

	path, err := WriteDraft(dir, "sprint-12", proposals)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sprint-12.yaml"), path)

	got, err := ReadDraft(path)
	require.NoError(t, err)
	assert.Equal(t, proposals, got)
}

func TestWriteDraft_GeneratedName(t *testing.T) {
	t.Parallel()

	path, err := WriteDraft(t.TempDir(), "", []ProposedIssue{{Index: 0, Title: "a", Dependency: -1}})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "draft-"))
	assert.True(t, strings.HasSuffix(path, ".yaml"))
}

func TestWriteDraft_RejectsTraversal(t *testing.T) {
	t.Parallel()

	_, err := WriteDraft(t.TempDir(), "../escape", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes history directory")
}

func TestWriteDraft_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := WriteDraft("  ", "name", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "history directory cannot be empty")
}

func TestReadDraft_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadDraft(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read draft")
}
