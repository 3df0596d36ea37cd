package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	"github.com/pkg/errors"
)

// Notes maps each note number seen in a chord to its peak velocity. Note-offs
// are recorded with velocity 0.
type Notes = map[uint8]uint8

// Chord is every note event sharing one absolute tick in a track.
type Chord struct {
	Tick   uint64
	Micros int64
	Tempo  uint32
	Notes  Notes
}

// Velocity returns the merged velocity of note, or 0 if it is not in the chord.
func (c Chord) Velocity(note uint8) uint8 {
	return c.Notes[note]
}

func (c Chord) Hit(note uint8) bool {
	return c.Notes[note] > 0
}

// SortedNotes returns the chord's note numbers in ascending order.
func (c Chord) SortedNotes() []uint8 {
	notes := make([]uint8, 0, len(c.Notes))
	for note := range c.Notes {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	return notes
}

func CreateChordKey(notes []uint8) string {
	var res string
	for i, note := range notes {
		res += fmt.Sprintf("%v", note)
		if i < len(notes)-1 {
			res += "-"
		}
	}
	return res
}

// OpenNotes tracks sounding notes in one track so note-offs can be paired
// with their note-on.
type OpenNotes struct {
	start    map[uint8]int64
	velocity map[uint8]uint8
}

func NewOpenNotes() *OpenNotes {
	return &OpenNotes{
		start:    make(map[uint8]int64),
		velocity: make(map[uint8]uint8),
	}
}

// Press opens note at micros, replacing any earlier open note-on.
func (o *OpenNotes) Press(note, velocity uint8, micros int64) {
	o.start[note] = micros
	o.velocity[note] = velocity
}

// Release closes note and returns when it started and how hard it was hit.
func (o *OpenNotes) Release(note uint8) (int64, uint8, error) {
	start, ok := o.start[note]
	if !ok {
		return 0, 0, errors.Wrapf(model.ErrDanglingNoteOff, "note %d", note)
	}
	velocity := o.velocity[note]
	delete(o.start, note)
	delete(o.velocity, note)
	return start, velocity, nil
}

func (o *OpenNotes) Len() int {
	return len(o.start)
}

// Walker groups a track's note events into chords. Non-note events are passed
// to OnEvent as they are reached, so a marker at a chord's tick is seen
// before the chord resolves.
type Walker struct {
	OnEvent func(evt model.Event, micros int64)
	OnChord func(c Chord) error
}

func (w Walker) Walk(events model.Track, cursor *tempo.Cursor) error {
	open := NewOpenNotes()
	notes := make(Notes)

	for i, evt := range events {
		micros := cursor.Advance(evt.Delta)

		switch evt.Kind {
		case model.NoteOn, model.NoteOff:
			if !cursor.Established() {
				return errors.Wrapf(model.ErrNoTempo, "note %d at tick %d", evt.Note, cursor.Tick())
			}
			velocity := evt.Velocity
			if evt.Kind == model.NoteOn {
				open.Press(evt.Note, evt.Velocity, micros)
			} else {
				if _, _, err := open.Release(evt.Note); err != nil {
					return errors.Wrapf(err, "at tick %d", cursor.Tick())
				}
				velocity = 0
			}
			if prev, ok := notes[evt.Note]; !ok || velocity > prev {
				notes[evt.Note] = velocity
			}
		case model.TempoChange, model.TrackName, model.TextMarker:
			if w.OnEvent != nil {
				w.OnEvent(evt, micros)
			}
		}

		boundary := i == len(events)-1 || events[i+1].Delta != 0
		if boundary && len(notes) > 0 {
			c := Chord{
				Tick:   cursor.Tick(),
				Micros: micros,
				Tempo:  cursor.Tempo(),
				Notes:  notes,
			}
			if w.OnChord != nil {
				if err := w.OnChord(c); err != nil {
					return err
				}
			}
			notes = make(Notes)
		}
	}
	return nil
}
