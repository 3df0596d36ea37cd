package midi

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"unicode/utf8"

	"github.com/jsphweid/chartconv/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/text/encoding/charmap"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.Errorf("Error parsing midi file %s... %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading midi file")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "Error parsing midi file")
	}

	return res, nil
}

// Load reads and decodes a midi file in one step.
func Load(filepath string) (model.Song, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return model.Song{}, err
	}
	return Decode(s)
}

// Decode converts an SMF into the event model. Only tempo, track name, text
// and note events are kept; the deltas of dropped events are carried over to
// the next kept event.
func Decode(s *smf.SMF) (model.Song, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return model.Song{}, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}

	song := model.Song{TicksPerBeat: uint32(ticks)}
	for _, track := range s.Tracks {
		var events model.Track
		var carry uint32
		for _, evt := range track {
			decoded, ok := decodeEvent(evt.Message)
			if !ok {
				carry += evt.Delta
				continue
			}
			decoded.Delta = carry + evt.Delta
			carry = 0
			events = append(events, decoded)
		}
		song.Tracks = append(song.Tracks, events)
	}
	return song, nil
}

func decodeEvent(msg smf.Message) (model.Event, bool) {
	var channel, key, velocity uint8
	var bpm float64
	var text string
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			return model.Event{Kind: model.NoteOff, Note: key}, true
		}
		return model.Event{Kind: model.NoteOn, Note: key, Velocity: velocity}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return model.Event{Kind: model.NoteOff, Note: key}, true
	case msg.GetMetaTempo(&bpm):
		if bpm <= 0 || math.IsInf(bpm, 1) {
			return model.Event{}, false
		}
		return model.Event{Kind: model.TempoChange, Tempo: MicrosPerBeat(bpm)}, true
	case msg.GetMetaTrackName(&text):
		return model.Event{Kind: model.TrackName, Text: decodeText(text)}, true
	case msg.GetMetaText(&text), msg.GetMetaLyric(&text):
		return model.Event{Kind: model.TextMarker, Text: decodeText(text)}, true
	}
	return model.Event{}, false
}

// MicrosPerBeat turns a tempo in beats per minute back into the file's
// microseconds per quarter note. Rounding makes this exact for every tempo a
// file can store.
func MicrosPerBeat(bpm float64) uint32 {
	return uint32(math.Round(60000000 / bpm))
}

// decodeText returns UTF-8 text as is and reads anything else as
// Windows-1252, which older charts use for accented lyrics.
func decodeText(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	res, err := charmap.Windows1252.NewDecoder().String(text)
	if err != nil {
		return text
	}
	return res
}

// Describe renders an event for inspection output.
func Describe(evt model.Event) string {
	switch evt.Kind {
	case model.TempoChange:
		return fmt.Sprintf("+%d tempo %d", evt.Delta, evt.Tempo)
	case model.TrackName:
		return fmt.Sprintf("+%d name %q", evt.Delta, evt.Text)
	case model.TextMarker:
		return fmt.Sprintf("+%d text %q", evt.Delta, evt.Text)
	case model.NoteOn:
		return fmt.Sprintf("+%d on %d vel %d", evt.Delta, evt.Note, evt.Velocity)
	case model.NoteOff:
		return fmt.Sprintf("+%d off %d", evt.Delta, evt.Note)
	}
	return fmt.Sprintf("+%d %v", evt.Delta, evt.Kind)
}
