package store

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/chartconv/model"
	"github.com/pkg/errors"
)

const (
	SongFile        = "song.json"
	ArrangementFile = "arrangement.json"
	AlbumArtName    = "albumart"
)

var albumArtSources = []string{"album.png", "album.jpg"}

// SafeFilename replaces characters that are not allowed in file names on
// common filesystems.
func SafeFilename(name string) string {
	res := strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	res = strings.Trim(res, " .")
	if res == "" {
		return "_"
	}
	return res
}

func SongDir(dest string, song model.SongData) string {
	return filepath.Join(dest, SafeFilename(song.ArtistName), SafeFilename(song.SongName))
}

// LoadSongData reads the song.json of an earlier conversion. It returns nil
// and no error when there is none.
func LoadSongData(dir string) (*model.SongData, error) {
	dat, err := os.ReadFile(filepath.Join(dir, SongFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read prior song data")
	}
	var res model.SongData
	if err := json.Unmarshal(dat, &res); err != nil {
		return nil, errors.Wrap(err, "could not parse prior song data")
	}
	return &res, nil
}

func writeJSON(path string, data any, indent bool) error {
	var dat []byte
	var err error
	if indent {
		dat, err = json.MarshalIndent(data, "", "  ")
	} else {
		dat, err = json.Marshal(data)
	}
	if err != nil {
		return errors.Wrapf(err, "could not encode %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, append(dat, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}

// Write saves the whole document into dir, overwriting earlier output.
// Parts without an arrangement file and empty vocals are not written.
func Write(dir string, doc *model.ChartDocument) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "could not create song dir")
	}

	for _, part := range doc.Song.InstrumentParts {
		if part.Arrangement == "" {
			continue
		}
		var notes any
		switch part.InstrumentType {
		case model.InstrumentDrums:
			notes = doc.Drums
		case model.InstrumentKeys:
			notes = doc.Keys
		case model.InstrumentVocals:
			if len(doc.Vocals) == 0 {
				continue
			}
			notes = doc.Vocals
		default:
			continue
		}
		if err := writeJSON(filepath.Join(dir, part.Arrangement), notes, false); err != nil {
			return err
		}
	}

	if err := writeJSON(filepath.Join(dir, SongFile), doc.Song, true); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ArrangementFile), doc.Structure, false)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "could not open asset")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "could not create asset")
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "could not copy %s", filepath.Base(src))
	}
	return out.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyAlbumArt copies the song's album art unless the destination already
// has some. It reports whether a file was copied.
func CopyAlbumArt(srcDir, dstDir string) (bool, error) {
	for _, name := range albumArtSources {
		if exists(filepath.Join(dstDir, AlbumArtName+filepath.Ext(name))) {
			return false, nil
		}
	}
	for _, name := range albumArtSources {
		src := filepath.Join(srcDir, name)
		if !exists(src) {
			continue
		}
		return true, copyFile(src, filepath.Join(dstDir, AlbumArtName+filepath.Ext(name)))
	}
	return false, nil
}

// CopyAudio copies every ogg stream of the song, overwriting earlier copies,
// and returns the copied file names.
func CopyAudio(srcDir, dstDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(srcDir, "*.ogg"))
	if err != nil {
		return nil, errors.Wrap(err, "could not list audio")
	}
	var res []string
	for _, src := range matches {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(dstDir, name)); err != nil {
			return res, err
		}
		res = append(res, name)
	}
	return res, nil
}
