package model

// EventKind tags the variant held by an Event.
type EventKind uint8

const (
	TempoChange EventKind = iota
	TrackName
	TextMarker
	NoteOn
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case TempoChange:
		return "TempoChange"
	case TrackName:
		return "TrackName"
	case TextMarker:
		return "TextMarker"
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	}
	return "Unknown"
}

// Event is one decoded track event. Which fields are meaningful depends on
// Kind: Tempo for TempoChange, Text for TrackName and TextMarker, Note and
// Velocity for NoteOn/NoteOff. Delta is the tick distance from the previous
// event in the same track.
type Event struct {
	Kind     EventKind
	Delta    uint32
	Tempo    uint32 // microseconds per quarter note
	Text     string
	Note     uint8
	Velocity uint8
}

type Track = []Event

// Song is a decoded MIDI file: tracks in source order plus the file's
// ticks-per-quarter-note resolution.
type Song struct {
	TicksPerBeat uint32
	Tracks       []Track
}

func Tempo(delta uint32, microsPerBeat uint32) Event {
	return Event{Kind: TempoChange, Delta: delta, Tempo: microsPerBeat}
}

func Name(delta uint32, text string) Event {
	return Event{Kind: TrackName, Delta: delta, Text: text}
}

func Text(delta uint32, text string) Event {
	return Event{Kind: TextMarker, Delta: delta, Text: text}
}

func On(delta uint32, note, velocity uint8) Event {
	return Event{Kind: NoteOn, Delta: delta, Note: note, Velocity: velocity}
}

func Off(delta uint32, note uint8) Event {
	return Event{Kind: NoteOff, Delta: delta, Note: note}
}
