package extract

import (
	"regexp"
	"strings"

	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
)

const (
	measureNote = 12
	beatNote    = 13
)

// Beats reads the beat track: note 12 starts a measure, note 13 is any other
// beat.
func Beats(events model.Track, cursor *tempo.Cursor) ([]model.SongBeat, error) {
	res := []model.SongBeat{}
	for _, evt := range events {
		micros := cursor.Advance(evt.Delta)

		switch evt.Kind {
		case model.NoteOn:
			if err := requireTempo(cursor, evt); err != nil {
				return nil, err
			}
			if evt.Note == measureNote || evt.Note == beatNote {
				res = append(res, model.SongBeat{
					TimeOffset: model.Seconds(micros),
					IsMeasure:  evt.Note == measureNote,
				})
			}
		case model.NoteOff:
			if err := requireTempo(cursor, evt); err != nil {
				return nil, err
			}
		case model.TempoChange, model.TrackName, model.TextMarker:
		}
	}
	return res, nil
}

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[section (\w+)\]`),
	regexp.MustCompile(`\[prc_(\w+)\]`),
}

// SectionName returns the section a marker opens, if any.
func SectionName(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range sectionPatterns {
		if m := r.FindStringSubmatch(lower); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Sections reads the events track. Each section ends where the next one
// starts; the last one ends at the track's final event.
func Sections(events model.Track, cursor *tempo.Cursor) []model.SongSection {
	res := []model.SongSection{}
	for _, evt := range events {
		micros := cursor.Advance(evt.Delta)
		if evt.Kind != model.TextMarker {
			continue
		}
		name, ok := SectionName(evt.Text)
		if !ok {
			continue
		}
		at := model.Seconds(micros)
		if len(res) > 0 {
			res[len(res)-1].EndTime = at
		}
		res = append(res, model.SongSection{Name: name, StartTime: at})
	}
	if len(res) > 0 {
		res[len(res)-1].EndTime = model.Seconds(cursor.Micros())
	}
	return res
}
