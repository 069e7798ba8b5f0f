package storage

import (
	"os"
	"path/filepath"
	"ratingd/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

func newTestArchiver(t *testing.T, root string, compress bool) (*Archiver, *testutil.MockMetrics) {
	t.Helper()
	conf := testutil.StoreConfig(root)
	conf.Archive.Compress = compress
	metrics := &testutil.MockMetrics{}
	a, err := NewArchiver(conf, &testutil.MockLogger{}, metrics)
	require.NoError(t, err)
	a.now = func() time.Time { return fixedNow }
	t.Cleanup(a.Close)
	return a, metrics
}

func TestArchiver_MovesFileWithTimestampName(t *testing.T) {
	root := t.TempDir()
	a, metrics := newTestArchiver(t, root, false)

	src := filepath.Join(root, "ratings.csv")
	require.NoError(t, os.WriteFile(src, []byte("foo,bar\n"), 0644))

	dst, err := a.Archive(src, ReasonCorrupt)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "archive", "ratings.csv.20240309_140507.bak"), dst)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "foo,bar\n", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, metrics.Archives["ratings.csv:corrupt"])
}

func TestArchiver_MissingSourceIsNoop(t *testing.T) {
	root := t.TempDir()
	a, metrics := newTestArchiver(t, root, false)

	dst, err := a.Archive(filepath.Join(root, "absent.json"), ReasonReset)
	require.NoError(t, err)
	assert.Empty(t, dst)
	assert.Empty(t, metrics.Archives)

	_, err = os.Stat(a.Dir())
	assert.True(t, os.IsNotExist(err), "archive dir is created lazily")
}

func TestArchiver_SameSecondDoesNotOverwrite(t *testing.T) {
	root := t.TempDir()
	a, _ := newTestArchiver(t, root, false)
	src := filepath.Join(root, "ratings.json")

	require.NoError(t, os.WriteFile(src, []byte("first"), 0644))
	first, err := a.Archive(src, ReasonReplace)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("second"), 0644))
	second, err := a.Archive(src, ReasonReplace)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Join(root, "archive", "ratings.json.20240309_140507_1.bak"), second)

	data, _ := os.ReadFile(first)
	assert.Equal(t, "first", string(data))
	data, _ = os.ReadFile(second)
	assert.Equal(t, "second", string(data))
}

func TestArchiver_Compressed(t *testing.T) {
	root := t.TempDir()
	a, _ := newTestArchiver(t, root, true)
	src := filepath.Join(root, "ratings.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"date":"2024-01-01T00:00:00","rating":4}]`), 0644))

	dst, err := a.Archive(src, ReasonReplace)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "ratings.json.20240309_140507.bak.zst"), dst)

	compressed, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `[{"date":"2024-01-01T00:00:00","rating":4}]`, string(decodeZstd(t, compressed)))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestArchiver_CompressFailureKeepsSource(t *testing.T) {
	root := t.TempDir()
	a, metrics := newTestArchiver(t, root, false)
	a.compressor = &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, assert.AnError },
	}

	src := filepath.Join(root, "ratings.csv")
	require.NoError(t, os.WriteFile(src, []byte("date,rating\n"), 0644))

	_, err := a.Archive(src, ReasonReset)
	require.Error(t, err)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "date,rating\n", string(data))
	assert.Empty(t, metrics.Archives)
}
