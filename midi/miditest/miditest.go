// Package miditest writes event-model songs out as standard MIDI files for
// tests.
package miditest

import (
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/chartconv/model"
)

// Encode builds an SMF from the event model. Notes go out on channel 0 and
// text markers as text meta events.
func Encode(song model.Song) *smf.SMF {
	res := smf.NewSMF1()
	res.TimeFormat = smf.MetricTicks(song.TicksPerBeat)

	for _, events := range song.Tracks {
		var track smf.Track
		for _, evt := range events {
			switch evt.Kind {
			case model.TempoChange:
				track.Add(evt.Delta, smf.MetaTempo(60000000/float64(evt.Tempo)))
			case model.TrackName:
				track.Add(evt.Delta, smf.MetaTrackSequenceName(evt.Text))
			case model.TextMarker:
				track.Add(evt.Delta, smf.MetaText(evt.Text))
			case model.NoteOn:
				track.Add(evt.Delta, midi.NoteOn(0, evt.Note, evt.Velocity))
			case model.NoteOff:
				track.Add(evt.Delta, midi.NoteOff(0, evt.Note))
			}
		}
		track.Close(0)
		res.Add(track)
	}
	return res
}

// WriteFile encodes song into a .mid file at path.
func WriteFile(path string, song model.Song) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := Encode(song).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
