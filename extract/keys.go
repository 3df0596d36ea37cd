package extract

import (
	"github.com/jsphweid/chartconv/chord"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	"github.com/pkg/errors"
)

func requireTempo(cursor *tempo.Cursor, evt model.Event) error {
	if !cursor.Established() {
		return errors.Wrapf(model.ErrNoTempo, "note %d at tick %d", evt.Note, cursor.Tick())
	}
	return nil
}

// Keys pairs every note-on with its note-off into sustained keyboard notes.
// Note 0 is paired but never emitted.
func Keys(events model.Track, cursor *tempo.Cursor) ([]model.KeyboardNote, error) {
	open := chord.NewOpenNotes()
	res := []model.KeyboardNote{}

	for _, evt := range events {
		micros := cursor.Advance(evt.Delta)

		switch evt.Kind {
		case model.NoteOn:
			if err := requireTempo(cursor, evt); err != nil {
				return nil, err
			}
			open.Press(evt.Note, evt.Velocity, micros)
		case model.NoteOff:
			if err := requireTempo(cursor, evt); err != nil {
				return nil, err
			}
			start, velocity, err := open.Release(evt.Note)
			if err != nil {
				return nil, errors.Wrapf(err, "at tick %d", cursor.Tick())
			}
			if evt.Note == 0 {
				continue
			}
			res = append(res, model.KeyboardNote{
				TimeOffset: model.Seconds(start),
				TimeLength: model.Seconds(micros - start),
				Note:       evt.Note,
				Velocity:   velocity,
			})
		case model.TempoChange, model.TrackName, model.TextMarker:
		}
	}
	return res, nil
}
