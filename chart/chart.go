package chart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/chartconv/drums"
	"github.com/jsphweid/chartconv/extract"
	"github.com/jsphweid/chartconv/ini"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	"github.com/jsphweid/chartconv/track"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var songNamespace = uuid.MustParse("5b0f7a3e-4c1d-4e5f-9a8b-2d6c7e1f0a93")

// SongID is stable for a given artist and song name, so re-converting a
// song keeps its id.
func SongID(artist, song string) string {
	key := strings.ToLower(strings.TrimSpace(artist)) + "/" + strings.ToLower(strings.TrimSpace(song))
	return uuid.NewSHA1(songNamespace, []byte(key)).String()
}

func NewSongData(meta ini.SongIni) model.SongData {
	return model.SongData{
		ID:              SongID(meta.Artist, meta.Song),
		SongName:        meta.Song,
		ArtistName:      meta.Artist,
		AlbumName:       meta.Album,
		MidiDelayMs:     meta.MidiDelay,
		IsRockBand4:     meta.IsRockBand4,
		InstrumentParts: []model.SongInstrumentPart{},
	}
}

// MergePrior lets metadata from an earlier conversion win over freshly parsed
// metadata. Instrument parts are always derived again from the tracks.
func MergePrior(fresh model.SongData, prior *model.SongData) model.SongData {
	if prior == nil {
		return fresh
	}
	merged := *prior
	if merged.ID == "" {
		merged.ID = fresh.ID
	}
	merged.InstrumentParts = fresh.InstrumentParts
	return merged
}

// ArrangementFile names the file a part's notes are written to.
func ArrangementFile(instrumentName string) string {
	return instrumentName + ".json"
}

// Assemble runs every track through the extractor for its role, in source
// order, and collects the results into one document.
func Assemble(song model.Song, meta model.SongData) (*model.ChartDocument, error) {
	doc := &model.ChartDocument{
		Song: meta,
		Structure: model.SongStructure{
			Sections: []model.SongSection{},
			Beats:    []model.SongBeat{},
		},
	}
	if doc.Song.InstrumentParts == nil {
		doc.Song.InstrumentParts = []model.SongInstrumentPart{}
	}

	timeline := tempo.BuildTimeline(tempo.Collect(song.Tracks))

	for i, events := range song.Tracks {
		name := track.Name(events)
		role := track.Classify(name)
		cursor := timeline.NewCursor(song.TicksPerBeat)
		logger := log.WithFields(log.Fields{"track": i, "name": name, "role": role})

		if err := checkTempo(events, timeline); err != nil {
			return nil, errors.Wrapf(err, "track %d (%s)", i, name)
		}
		if err := convertTrack(doc, role, events, cursor); err != nil {
			return nil, errors.Wrapf(err, "track %d (%s)", i, name)
		}

		if part, ok := role.Part(); ok {
			part.Arrangement = ArrangementFile(part.InstrumentName)
			doc.Song.SetPart(part)
		}
		logger.Debug("converted track")
	}

	// no vocals.json is written for a vocal track without syllables
	if len(doc.Vocals) == 0 {
		for i, part := range doc.Song.InstrumentParts {
			if part.InstrumentType == model.InstrumentVocals {
				doc.Song.InstrumentParts[i].Arrangement = ""
			}
		}
	}
	return doc, nil
}

// checkTempo fails if any note in the track comes before the first tempo
// change, whatever the track's role.
func checkTempo(events model.Track, timeline *tempo.Timeline) error {
	var absTicks uint64
	for _, evt := range events {
		absTicks += uint64(evt.Delta)
		if evt.Kind != model.NoteOn && evt.Kind != model.NoteOff {
			continue
		}
		if !timeline.Covers(absTicks) {
			return errors.Wrapf(model.ErrNoTempo, "note %d at tick %d", evt.Note, absTicks)
		}
		return nil
	}
	return nil
}

func convertTrack(doc *model.ChartDocument, role track.Role, events model.Track, cursor *tempo.Cursor) error {
	switch role {
	case track.Drums:
		notes, err := drums.Extract(events, cursor)
		if err != nil {
			return err
		}
		doc.Drums = notes
	case track.Keys:
		notes, err := extract.Keys(events, cursor)
		if err != nil {
			return err
		}
		doc.Keys = notes
	case track.Vocals:
		doc.Vocals = extract.Vocals(events, cursor)
	case track.Beats:
		beats, err := extract.Beats(events, cursor)
		if err != nil {
			return err
		}
		doc.Structure.Beats = append(doc.Structure.Beats, beats...)
	case track.Events:
		doc.Structure.Sections = append(doc.Structure.Sections, extract.Sections(events, cursor)...)
	case track.Ignored:
	}
	return nil
}
