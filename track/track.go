package track

import (
	"strings"

	"github.com/jsphweid/chartconv/model"
)

type Role uint8

const (
	Ignored Role = iota
	Drums
	Keys
	Vocals
	Beats
	Events
)

func (r Role) String() string {
	switch r {
	case Drums:
		return "drums"
	case Keys:
		return "keys"
	case Vocals:
		return "vocals"
	case Beats:
		return "beats"
	case Events:
		return "events"
	}
	return "ignored"
}

// Classify picks a track's role from its name. Matching is on the lowercased
// suffix, so "PART DRUMS" and "part drums" are both drum tracks.
func Classify(name string) Role {
	lower := strings.ToLower(name)
	switch {
	case lower == "":
		return Ignored
	case strings.HasSuffix(lower, "drums"):
		return Drums
	case strings.HasSuffix(lower, "beat"):
		return Beats
	case strings.HasSuffix(lower, "vocals"):
		return Vocals
	case strings.HasSuffix(lower, "real_keys_x"):
		return Keys
	case strings.HasSuffix(lower, "events"):
		return Events
	}
	return Ignored
}

// Name returns the first track name marker in the track, or "".
func Name(events model.Track) string {
	for _, evt := range events {
		if evt.Kind == model.TrackName {
			return evt.Text
		}
	}
	return ""
}

// Part is the instrument part a role registers in the chart document.
func (r Role) Part() (model.SongInstrumentPart, bool) {
	switch r {
	case Drums:
		return model.SongInstrumentPart{InstrumentName: "drums", InstrumentType: model.InstrumentDrums}, true
	case Keys:
		return model.SongInstrumentPart{InstrumentName: "keys", InstrumentType: model.InstrumentKeys}, true
	case Vocals:
		return model.SongInstrumentPart{InstrumentName: "vocals", InstrumentType: model.InstrumentVocals}, true
	}
	return model.SongInstrumentPart{}, false
}
