package extract

import (
	"testing"

	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cursor() *tempo.Cursor {
	return tempo.BuildTimeline([]tempo.Entry{{Tick: 0, MicrosPerBeat: 500000}}).NewCursor(480)
}

func TestKeys(t *testing.T) {
	notes, err := Keys(model.Track{
		model.Name(0, "PART REAL_KEYS_X"),
		model.On(0, 60, 90),
		model.On(0, 64, 80),
		model.Off(480, 60),
		model.Off(240, 64),
	}, cursor())
	require.NoError(t, err)

	assert.Equal(t, []model.KeyboardNote{
		{TimeOffset: 0, TimeLength: 0.5, Note: 60, Velocity: 90},
		{TimeOffset: 0, TimeLength: 0.75, Note: 64, Velocity: 80},
	}, notes)
}

func TestKeysSkipsNoteZero(t *testing.T) {
	notes, err := Keys(model.Track{model.On(0, 0, 90), model.Off(480, 0)}, cursor())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestKeysErrors(t *testing.T) {
	_, err := Keys(model.Track{model.On(0, 60, 90), model.Off(10, 62)}, cursor())
	assert.True(t, errors.Is(err, model.ErrDanglingNoteOff))

	noTempo := tempo.BuildTimeline(nil).NewCursor(480)
	_, err = Keys(model.Track{model.On(0, 60, 90)}, noTempo)
	assert.True(t, errors.Is(err, model.ErrNoTempo))
}

func TestVocalsStripSuffix(t *testing.T) {
	vocals := Vocals(model.Track{
		model.Name(0, "PART VOCALS"),
		model.Text(0, "Hello"),
		model.On(0, 60, 100),
		model.Off(240, 60),
		model.Text(240, "World#"),
	}, cursor())

	assert.Equal(t, []model.Vocal{
		{TimeOffset: 0, Vocal: "Hello"},
		{TimeOffset: 0.5, Vocal: "World"},
	}, vocals)
}

func TestVocalsSkipMarkers(t *testing.T) {
	vocals := Vocals(model.Track{
		model.Text(0, "[play]"),
		model.Text(10, "+"),
		model.Text(10, "la^"),
		model.Text(10, "la="),
	}, cursor())

	require.Len(t, vocals, 2)
	assert.Equal(t, "la", vocals[0].Vocal)
	assert.Equal(t, "la", vocals[1].Vocal)
}

func TestCleanSyllable(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Hel-", "Hel-", true},
		{"World#", "World", true},
		{"oh^", "oh", true},
		{"Ex=", "Ex", true},
		{"a##", "a#", true},
		{"+", "", false},
		{"[idle]", "", false},
		{"#", "", false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := CleanSyllable(c.in)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.ok, ok)
		})
	}
}

func texts(syllables ...string) model.Track {
	var events model.Track
	for _, s := range syllables {
		events = append(events, model.Text(10, s))
	}
	return events
}

func TestVocalsWrapPastMaxLength(t *testing.T) {
	vocals := Vocals(texts("abcdefghij", "abcdefghij", "abcdefghij", "abcdefghij", "abc"), cursor())

	var breaks int
	for _, v := range vocals {
		if v.Vocal[len(v.Vocal)-1] == '\n' {
			breaks++
		}
	}
	assert.Equal(t, 1, breaks)
	assert.Equal(t, "abcdefghij\n", vocals[2].Vocal)
	assert.Equal(t, "abcdefghij", vocals[3].Vocal)
}

func TestVocalsWrapOnCapital(t *testing.T) {
	vocals := Vocals(texts("hello ", "world ", "there ", "friend", "Again"), cursor())

	assert.Equal(t, "friend\n", vocals[3].Vocal)
	assert.Equal(t, "Again", vocals[4].Vocal)
	for _, v := range vocals[:3] {
		assert.NotContains(t, v.Vocal, "\n")
	}
}

func TestVocalsCapitalBelowThreshold(t *testing.T) {
	vocals := Vocals(texts("hello ", "World"), cursor())
	for _, v := range vocals {
		assert.NotContains(t, v.Vocal, "\n")
	}
}

func TestBeats(t *testing.T) {
	beats, err := Beats(model.Track{
		model.Name(0, "BEAT"),
		model.On(0, 12, 100),
		model.Off(120, 12),
		model.On(360, 13, 100),
		model.Off(120, 13),
		model.On(360, 14, 100),
	}, cursor())
	require.NoError(t, err)

	assert.Equal(t, []model.SongBeat{
		{TimeOffset: 0, IsMeasure: true},
		{TimeOffset: 0.5, IsMeasure: false},
	}, beats)
}

func TestSections(t *testing.T) {
	sections := Sections(model.Track{
		model.Name(0, "EVENTS"),
		model.Text(0, "[section intro]"),
		model.Text(480, "[crowd_noclap]"),
		model.Text(480, "[prc_verse_1]"),
		model.Text(960, "[end]"),
	}, cursor())

	assert.Equal(t, []model.SongSection{
		{Name: "intro", StartTime: 0, EndTime: 1},
		{Name: "verse_1", StartTime: 1, EndTime: 2},
	}, sections)
}

func TestSectionName(t *testing.T) {
	name, ok := SectionName("[SECTION Chorus]")
	assert.True(t, ok)
	assert.Equal(t, "chorus", name)

	_, ok = SectionName("[lighting (verse)]")
	assert.False(t, ok)
}
