package glyphbank

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"lvl/hiragana.txt": {Data: []byte("あい\nうえ\n")},
		"lvl/kanji01.txt":  {Data: []byte("山川\n")},
		"sol/hiragana.txt": {Data: []byte("あ:a\nい:i\nう:u\nえ:e\n")},
		"sol/kanji01.txt":  {Data: []byte("山:yama\n川:kawa\n")},
	}
}

func TestLoadPools(t *testing.T) {
	b, err := Load(testFS(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, 1, b.MaxLevel())
	assert.Equal(t, []rune("あいうえ"), b.Pool(0))
	assert.Equal(t, []rune("山川"), b.Pool(1))
	assert.Nil(t, b.Pool(2))
}

func TestLoadReadings(t *testing.T) {
	b, err := Load(testFS(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"yama"}, b.Readings('山'))
	assert.Equal(t, []string{"a"}, b.Readings('あ'))
	assert.Nil(t, b.Readings('犬'))
}

func TestBaseReadingOnlyCoversHiragana(t *testing.T) {
	b, err := Load(testFS(), slog.Default())
	require.NoError(t, err)

	ro, ok := b.BaseReading('あ')
	require.True(t, ok)
	assert.Equal(t, "a", ro)

	_, ok = b.BaseReading('山')
	assert.False(t, ok, "kanji must not appear in the base sub-table")
}

func TestLoadMultipleSpellingsKeepOrder(t *testing.T) {
	fsys := testFS()
	fsys["sol/hiragana.txt"] = &fstest.MapFile{Data: []byte("あ:a\nい:i\nう:u\nえ:e\nし:shi,si\n")}
	fsys["lvl/hiragana.txt"] = &fstest.MapFile{Data: []byte("あいうえし")}

	b, err := Load(fsys, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"shi", "si"}, b.Readings('し'))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	fsys := testFS()
	fsys["sol/kanji01.txt"] = &fstest.MapFile{Data: []byte("山:yama\nbogus line\n川:kawa\n::\n")}

	b, err := Load(fsys, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"yama"}, b.Readings('山'))
	assert.Equal(t, []string{"kawa"}, b.Readings('川'))
}

func TestLoadRejectsMissingLevelFiles(t *testing.T) {
	_, err := Load(fstest.MapFS{}, slog.Default())
	assert.Error(t, err)

	// A gap in the level sequence is a configuration error, not data to
	// guess around.
	fsys := testFS()
	delete(fsys, "lvl/hiragana.txt")
	_, err = Load(fsys, slog.Default())
	assert.Error(t, err)
}

func TestLoadRejectsEmptyPool(t *testing.T) {
	fsys := testFS()
	fsys["lvl/kanji01.txt"] = &fstest.MapFile{Data: []byte("   \n")}
	_, err := Load(fsys, slog.Default())
	assert.Error(t, err)
}
