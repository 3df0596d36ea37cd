// Package ini reads the song.ini metadata file shipped next to a chart.
package ini

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	goini "gopkg.in/ini.v1"
)

type SongIni struct {
	Song        string
	Artist      string
	Album       string
	MidiDelay   int
	IsRockBand4 bool
}

// Charts write song names verbatim, so "#", quotes and trailing backslashes
// are part of the value.
var loadOptions = goini.LoadOptions{
	Insensitive:             true,
	SkipUnrecognizableLines: true,
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
}

func fromFile(f *goini.File) SongIni {
	var res SongIni
	// keys are read from every section in file order, later ones win
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			switch key.Name() {
			case "name":
				res.Song = key.String()
			case "artist":
				res.Artist = key.String()
			case "album":
				res.Album = key.String()
			case "delay":
				if delay, err := key.Int(); err == nil {
					res.MidiDelay = delay
				}
			case "icon":
				if strings.ToLower(key.String()) == "rb4" {
					res.IsRockBand4 = true
				}
			}
		}
	}
	return res
}

// Parse reads key=value lines. Lines without "=" and unknown keys are skipped.
func Parse(r io.Reader) (SongIni, error) {
	f, err := goini.LoadSources(loadOptions, io.NopCloser(r))
	if err != nil {
		return SongIni{}, errors.Wrap(err, "could not read song ini")
	}
	return fromFile(f), nil
}

func Load(path string) (SongIni, error) {
	f, err := goini.LoadSources(loadOptions, path)
	if err != nil {
		return SongIni{}, errors.Wrap(err, "could not open song ini")
	}
	return fromFile(f), nil
}
