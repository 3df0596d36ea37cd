package model

type InstrumentType string

const (
	InstrumentDrums  InstrumentType = "Drums"
	InstrumentKeys   InstrumentType = "Keys"
	InstrumentVocals InstrumentType = "Vocals"
)

type SongInstrumentPart struct {
	InstrumentName string         `json:"instrumentName"`
	InstrumentType InstrumentType `json:"instrumentType"`
	SongAudio      string         `json:"songAudio,omitempty"`
	Arrangement    string         `json:"arrangement,omitempty"`
}

// SongData is the song-level metadata written as song.json.
type SongData struct {
	ID              string               `json:"id"`
	SongName        string               `json:"songName"`
	ArtistName      string               `json:"artistName"`
	AlbumName       string               `json:"albumName"`
	MidiDelayMs     int                  `json:"midiDelayMs,omitempty"`
	IsRockBand4     bool                 `json:"isRockBand4,omitempty"`
	InstrumentParts []SongInstrumentPart `json:"instrumentParts"`
}

// SetPart registers an instrument part, replacing any earlier part with the
// same name.
func (s *SongData) SetPart(part SongInstrumentPart) {
	for i := range s.InstrumentParts {
		if s.InstrumentParts[i].InstrumentName == part.InstrumentName {
			s.InstrumentParts[i] = part
			return
		}
	}
	s.InstrumentParts = append(s.InstrumentParts, part)
}

type DrumNote struct {
	TimeOffset   float32      `json:"timeOffset"`
	KitPiece     KitPiece     `json:"kitPiece"`
	Articulation Articulation `json:"articulation,omitempty"`
	Velocity     uint8        `json:"velocity"`
}

type KeyboardNote struct {
	TimeOffset float32 `json:"timeOffset"`
	TimeLength float32 `json:"timeLength"`
	Note       uint8   `json:"note"`
	Velocity   uint8   `json:"velocity"`
}

type Vocal struct {
	TimeOffset float32 `json:"timeOffset"`
	Vocal      string  `json:"vocal"`
}

type SongSection struct {
	Name      string  `json:"name"`
	StartTime float32 `json:"startTime"`
	EndTime   float32 `json:"endTime"`
}

type SongBeat struct {
	TimeOffset float32 `json:"timeOffset"`
	IsMeasure  bool    `json:"isMeasure"`
}

type SongStructure struct {
	Sections []SongSection `json:"sections"`
	Beats    []SongBeat    `json:"beats"`
}

// ChartDocument is everything produced for one song.
type ChartDocument struct {
	Song      SongData
	Drums     []DrumNote
	Keys      []KeyboardNote
	Vocals    []Vocal
	Structure SongStructure
}

// Seconds converts a microsecond position to the float seconds used in
// chart files.
func Seconds(micros int64) float32 {
	return float32(float64(micros) / 1000000.0)
}
