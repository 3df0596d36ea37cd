package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/chartconv/catalog"
	"github.com/jsphweid/chartconv/midi/miditest"
	"github.com/jsphweid/chartconv/model"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSong() model.Song {
	return model.Song{
		TicksPerBeat: 480,
		Tracks: []model.Track{
			{model.Name(0, "tempo"), model.Tempo(0, 500000)},
			{model.Name(0, "PART DRUMS"), model.On(0, 96, 100), model.Off(240, 96)},
			{model.Name(0, "PART VOCALS"), model.Text(0, "Hello"), model.Text(480, "World#")},
			{model.Name(0, "EVENTS"), model.Text(0, "[section intro]"), model.Text(960, "[end]")},
		},
	}
}

func writeSongDir(t *testing.T, dir, artist, name string, song model.Song) {
	require.NoError(t, os.MkdirAll(dir, 0755))
	ini := fmt.Sprintf("[song]\nname = %s\nartist = %s\nalbum = Tests\n", name, artist)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.ini"), []byte(ini), 0644))

	require.NoError(t, miditest.WriteFile(filepath.Join(dir, "notes.mid"), song))
}

func readFile(t *testing.T, path string) string {
	dat, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(dat)
}

func TestConvertSong(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dest := t.TempDir()
	writeSongDir(t, src, "The Band", "First", testSong())
	require.NoError(t, os.WriteFile(filepath.Join(src, "album.png"), []byte("art"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "drums.ogg"), []byte("ogg"), 0644))

	c := New(Options{Dest: dest, Audio: true})
	dir, err := c.ConvertSong(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "The Band", "First"), dir)

	for _, name := range []string{"song.json", "arrangement.json", "drums.json", "vocals.json", "albumart.png", "drums.ogg"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	var drums []model.DrumNote
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "drums.json"))), &drums))
	assert.Equal(t, []model.DrumNote{{TimeOffset: 0, KitPiece: model.Kick, Velocity: 100}}, drums)

	var song model.SongData
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "song.json"))), &song))
	assert.Equal(t, "First", song.SongName)
	require.Len(t, song.InstrumentParts, 2)
	assert.Equal(t, "drums.ogg", song.InstrumentParts[0].SongAudio)
	assert.Equal(t, "", song.InstrumentParts[1].SongAudio)
}

func TestConvertSongIsIdempotent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dest := t.TempDir()
	writeSongDir(t, src, "The Band", "First", testSong())
	require.NoError(t, os.WriteFile(filepath.Join(src, "album.png"), []byte("art"), 0644))

	c := New(Options{Dest: dest})
	dir, err := c.ConvertSong(context.Background(), src)
	require.NoError(t, err)

	files := []string{"song.json", "arrangement.json", "drums.json", "vocals.json"}
	first := map[string]string{}
	for _, name := range files {
		first[name] = readFile(t, filepath.Join(dir, name))
	}

	require.NoError(t, os.WriteFile(filepath.Join(src, "album.png"), []byte("changed art"), 0644))
	_, err = c.ConvertSong(context.Background(), src)
	require.NoError(t, err)

	for _, name := range files {
		assert.Equal(t, first[name], readFile(t, filepath.Join(dir, name)), name)
	}
	assert.Equal(t, "art", readFile(t, filepath.Join(dir, "albumart.png")))
}

func TestPriorMetadataWins(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dest := t.TempDir()
	writeSongDir(t, src, "The Band", "First", testSong())

	dir := filepath.Join(dest, "The Band", "First")
	require.NoError(t, os.MkdirAll(dir, 0755))
	prior := `{"id":"custom","songName":"First (Remix)","artistName":"The Band","albumName":"Edited"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.json"), []byte(prior), 0644))

	_, err := New(Options{Dest: dest}).ConvertSong(context.Background(), src)
	require.NoError(t, err)

	var song model.SongData
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "song.json"))), &song))
	assert.Equal(t, "custom", song.ID)
	assert.Equal(t, "First (Remix)", song.SongName)
	assert.Equal(t, "Edited", song.AlbumName)
	assert.Len(t, song.InstrumentParts, 2)
}

func TestUnparsablePriorIsIgnored(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dest := t.TempDir()
	writeSongDir(t, src, "The Band", "First", testSong())

	dir := filepath.Join(dest, "The Band", "First")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.json"), []byte("{broken"), 0644))

	_, err := New(Options{Dest: dest}).ConvertSong(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, filepath.Join(dir, "song.json")), `"albumName": "Tests"`)
}

func TestMalformedSongFails(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	song := testSong()
	song.Tracks[1] = model.Track{model.Name(0, "PART DRUMS"), model.Off(0, 96)}
	writeSongDir(t, src, "The Band", "Broken", song)

	_, err := New(Options{Dest: t.TempDir()}).ConvertSong(context.Background(), src)
	assert.ErrorIs(t, err, model.ErrDanglingNoteOff)
}

func batch(t *testing.T) string {
	root := t.TempDir()
	writeSongDir(t, filepath.Join(root, "a", "one"), "Artist", "One", testSong())
	broken := testSong()
	broken.Tracks[1] = model.Track{model.Name(0, "PART DRUMS"), model.Off(0, 96)}
	writeSongDir(t, filepath.Join(root, "b", "two"), "Artist", "Two", broken)
	writeSongDir(t, filepath.Join(root, "c", "nested", "three"), "Artist", "Three", testSong())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d", "empty"), 0755))
	return root
}

func TestConvertAllContinuesPastFailures(t *testing.T) {
	dest := t.TempDir()
	res, err := New(Options{Dest: dest, Workers: 2}).ConvertAll(context.Background(), batch(t), nil)
	require.NoError(t, err)

	assert.Equal(t, Result{Converted: 2, Failed: 1}, res)
	assert.FileExists(t, filepath.Join(dest, "Artist", "One", "song.json"))
	assert.FileExists(t, filepath.Join(dest, "Artist", "Three", "song.json"))
}

func TestConvertAllAsksInOrderAndAborts(t *testing.T) {
	dest := t.TempDir()
	var asked []string
	confirm := func(label string) bool {
		asked = append(asked, label)
		return len(asked) < 2
	}

	res, err := New(Options{Dest: dest, Workers: 1}).ConvertAll(context.Background(), batch(t), confirm)
	require.NoError(t, err)

	assert.Equal(t, []string{"Artist - One", "Artist - Two"}, asked)
	assert.Equal(t, Result{Converted: 1, Aborted: true}, res)
	assert.NoFileExists(t, filepath.Join(dest, "Artist", "Three", "song.json"))
}

func TestConvertAllMissingRoot(t *testing.T) {
	_, err := New(Options{Dest: t.TempDir()}).ConvertAll(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

type memoryCatalog struct {
	mu      sync.Mutex
	entries map[string]catalog.Entry
}

func (m *memoryCatalog) Put(_ context.Context, e catalog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *memoryCatalog) Get(_ context.Context, ids []string) (map[string]catalog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string]catalog.Entry)
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			res[id] = e
		}
	}
	return res, nil
}

func TestPublishesToCatalog(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	writeSongDir(t, src, "The Band", "First", testSong())
	cat := &memoryCatalog{entries: map[string]catalog.Entry{}}

	_, err := New(Options{Dest: t.TempDir(), Catalog: cat}).ConvertSong(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, cat.entries, 1)
	for _, e := range cat.entries {
		assert.Equal(t, "First", e.Title)
		assert.Equal(t, "The Band/First", e.Path)
		assert.Equal(t, []string{"drums", "vocals"}, e.Parts)
	}
}

func TestIsSongDir(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsSongDir(dir))
	writeSongDir(t, dir, "A", "B", testSong())
	assert.True(t, IsSongDir(dir))
	assert.Equal(t, "A - B", Label(dir))
}

func TestProgressReportedOnceAtEnd(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	root := t.TempDir()
	writeSongDir(t, filepath.Join(root, "one"), "Artist", "One", testSong())
	_, err := New(Options{Dest: t.TempDir()}).ConvertAll(context.Background(), root, nil)
	require.NoError(t, err)

	time.Sleep(700 * time.Millisecond)
	var reports int
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "converted 1 of 1 songs") {
			reports++
		}
	}
	assert.Equal(t, 1, reports)
}

func TestSilentVocalsWriteNoVocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	song := testSong()
	song.Tracks[2] = model.Track{model.Name(0, "PART VOCALS"), model.Text(0, "[idle]"), model.Text(480, "+")}
	writeSongDir(t, src, "The Band", "Quiet", song)

	dir, err := New(Options{Dest: t.TempDir()}).ConvertSong(context.Background(), src)
	require.NoError(t, err)

	var data model.SongData
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "song.json"))), &data))
	for _, part := range data.InstrumentParts {
		if part.Arrangement != "" {
			assert.FileExists(t, filepath.Join(dir, part.Arrangement))
		}
	}
	assert.NoFileExists(t, filepath.Join(dir, "vocals.json"))
}
