package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := NewStore(filepath.Join(root, "staging"), filepath.Join(root, "vault"))
	require.NoError(t, err)
	s.copyAttempts = 2
	s.copyBaseDelay = time.Millisecond
	s.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestFilename(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name          string
		title         string
		datePublished string
		want          string
	}{
		{
			name:          "uses publish date and slugified title",
			title:         "How AI Changes Venture Capital",
			datePublished: "2024-01-09",
			want:          "2024-01-09__how-ai-changes-venture-capital__dQw4w9WgXcQ.md",
		},
		{
			name:          "falls back to current date",
			title:         "Untitled Episode",
			datePublished: "",
			want:          "2024-03-15__untitled-episode__dQw4w9WgXcQ.md",
		},
		{
			name:          "strips unsafe filesystem characters",
			title:         `Q&A: "What's <next>?" | part 2`,
			datePublished: "2024-01-09",
			want:          "2024-01-09__q&a-what's-next-part-2__dQw4w9WgXcQ.md",
		},
		{
			name:          "empty title becomes untitled",
			title:         "???",
			datePublished: "2024-01-09",
			want:          "2024-01-09__untitled__dQw4w9WgXcQ.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Filename(tt.title, "dQw4w9WgXcQ", tt.datePublished)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename_LengthBounded(t *testing.T) {
	s := newTestStore(t)

	long := ""
	for i := 0; i < 50; i++ {
		long += "very long title "
	}
	got := s.Filename(long, "dQw4w9WgXcQ", "2024-01-09")
	assert.LessOrEqual(t, len(got), maxFilenameLength)
	assert.Contains(t, got, "__dQw4w9WgXcQ.md")
}

func TestSave_WritesToStagingAndVault(t *testing.T) {
	s := newTestStore(t)

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "# Episode\n", false)
	require.NoError(t, err)

	assert.True(t, out.Saved)
	assert.False(t, out.Skipped)
	assert.Empty(t, out.ErrorCode)

	for _, p := range []string{out.StagedPath, out.Path} {
		content, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "# Episode\n", string(content))
	}
}

func TestSave_SkipsExistingArtifact(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "original\n", false)
	require.NoError(t, err)
	require.True(t, first.Saved)

	second, err := s.Save("dQw4w9WgXcQ", "2024-01-10__renamed__dQw4w9WgXcQ.md", "new content\n", false)
	require.NoError(t, err)

	assert.True(t, second.Skipped)
	assert.False(t, second.Saved)
	assert.Equal(t, first.Path, second.Path)

	content, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(content))
}

func TestSave_OverwriteReplacesArtifact(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "original\n", false)
	require.NoError(t, err)

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "updated\n", true)
	require.NoError(t, err)
	assert.True(t, out.Saved)
	assert.False(t, out.Skipped)

	content, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "updated\n", string(content))
}

func TestSave_StagingFailureIsFatal(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(filepath.Join(root, "staging"), filepath.Join(root, "vault"))
	require.NoError(t, err)

	// Remove the staging dir so the atomic write has nowhere to go.
	require.NoError(t, os.RemoveAll(s.staging))

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "content\n", false)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrStagingWrite)
}

func TestSave_LockedVaultDowngradesToStagingOnly(t *testing.T) {
	s := newTestStore(t)
	s.copyFile = func(src, dst string) error { return os.ErrPermission }

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "content\n", false)
	require.NoError(t, err)

	assert.False(t, out.Saved)
	assert.Equal(t, CodeFileLocked, out.ErrorCode)
	assert.NotEmpty(t, out.StagedPath)

	content, readErr := os.ReadFile(out.StagedPath)
	require.NoError(t, readErr)
	assert.Equal(t, "content\n", string(content))
}

func TestSave_CopyErrorDowngradesToStagingOnly(t *testing.T) {
	s := newTestStore(t)
	s.copyFile = func(src, dst string) error { return assert.AnError }

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "content\n", false)
	require.NoError(t, err)

	assert.False(t, out.Saved)
	assert.Equal(t, CodeCopyError, out.ErrorCode)
}

func TestSave_LockedVaultRetriesUntilUnlocked(t *testing.T) {
	s := newTestStore(t)
	calls := 0
	s.copyFile = func(src, dst string) error {
		calls++
		if calls == 1 {
			return os.ErrPermission
		}
		return copyFileAtomic(src, dst)
	}

	out, err := s.Save("dQw4w9WgXcQ", "2024-01-09__episode__dQw4w9WgXcQ.md", "content\n", false)
	require.NoError(t, err)

	assert.True(t, out.Saved)
	assert.Equal(t, 2, calls)
}

func TestFindExisting(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.FindExisting("dQw4w9WgXcQ")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(s.staging, "2024-01-09__ep__dQw4w9WgXcQ.md"), []byte("x"), 0o644))

	path, ok := s.FindExisting("dQw4w9WgXcQ")
	assert.True(t, ok)
	assert.Contains(t, path, "dQw4w9WgXcQ.md")

	_, ok = s.FindExisting("aaaaaaaaaaa")
	assert.False(t, ok)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.staging, "a__x__id1.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.vault, "a__x__id1.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.vault, "b__y__id2.md"), []byte("y"), 0o644))

	staged, vault, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, staged)
	assert.Equal(t, 2, vault)
}
