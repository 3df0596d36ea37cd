package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/chartconv/catalog"
	"github.com/jsphweid/chartconv/chart"
	"github.com/jsphweid/chartconv/constants"
	"github.com/jsphweid/chartconv/ini"
	"github.com/jsphweid/chartconv/midi"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/store"
	"github.com/jsphweid/chartconv/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Dest    string
	Audio   bool
	Workers int

	// Catalog is optional.
	Catalog catalog.Catalog
}

// Confirm is asked once per song before anything is written for it.
// Returning false stops the batch.
type Confirm func(label string) bool

type Result struct {
	Converted int
	Failed    int
	Aborted   bool
}

type Converter struct {
	opts Options
}

func New(opts Options) *Converter {
	opts.Workers = util.Max(opts.Workers, 1)
	return &Converter{opts: opts}
}

func IsSongDir(dir string) bool {
	for _, name := range []string{constants.SongMidiFile, constants.SongIniFile} {
		if info, err := os.Stat(filepath.Join(dir, name)); err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// Label describes a song folder for prompts and logs.
func Label(songDir string) string {
	meta, err := ini.Load(filepath.Join(songDir, constants.SongIniFile))
	if err != nil || (meta.Artist == "" && meta.Song == "") {
		return filepath.Base(songDir)
	}
	return meta.Artist + " - " + meta.Song
}

// ConvertSong converts one song folder and returns the directory it was
// written to.
func (c *Converter) ConvertSong(ctx context.Context, songDir string) (string, error) {
	meta, err := ini.Load(filepath.Join(songDir, constants.SongIniFile))
	if err != nil {
		return "", err
	}
	song, err := midi.Load(filepath.Join(songDir, constants.SongMidiFile))
	if err != nil {
		return "", err
	}

	fresh := chart.NewSongData(meta)
	dir := store.SongDir(c.opts.Dest, fresh)
	logger := log.WithFields(log.Fields{"song": fresh.SongName, "artist": fresh.ArtistName})

	prior, err := store.LoadSongData(dir)
	if err != nil {
		logger.WithError(err).Warn("ignoring prior song data")
		prior = nil
	}

	doc, err := chart.Assemble(song, chart.MergePrior(fresh, prior))
	if err != nil {
		return "", errors.Wrapf(err, "could not convert %s", songDir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "could not create song dir")
	}
	if c.opts.Audio {
		copied, err := store.CopyAudio(songDir, dir)
		if err != nil {
			return "", err
		}
		linkAudio(doc, copied)
	}
	if err := store.Write(dir, doc); err != nil {
		return "", err
	}
	if _, err := store.CopyAlbumArt(songDir, dir); err != nil {
		return "", err
	}

	if c.opts.Catalog != nil {
		rel, err := filepath.Rel(c.opts.Dest, dir)
		if err != nil {
			rel = dir
		}
		if err := c.opts.Catalog.Put(ctx, catalog.EntryFor(doc.Song, filepath.ToSlash(rel))); err != nil {
			return "", err
		}
	}

	logger.WithFields(log.Fields{
		"drums":  len(doc.Drums),
		"keys":   len(doc.Keys),
		"vocals": len(doc.Vocals),
	}).Info("converted song")
	return dir, nil
}

// linkAudio points each part at the copied stream sharing its name, if any.
func linkAudio(doc *model.ChartDocument, copied []string) {
	streams := make(map[string]string)
	for _, name := range copied {
		streams[strings.TrimSuffix(name, filepath.Ext(name))] = name
	}
	for i, part := range doc.Song.InstrumentParts {
		if name, ok := streams[part.InstrumentName]; ok {
			doc.Song.InstrumentParts[i].SongAudio = name
		}
	}
}

// walk visits song folders depth first in name order. It returns false once
// visit asks to stop.
func walk(dir string, visit func(songDir string) bool) bool {
	if IsSongDir(dir) && !visit(dir) {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Warn("skipping unreadable directory")
		return true
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !walk(filepath.Join(dir, entry.Name()), visit) {
			return false
		}
	}
	return true
}

// ConvertAll converts every song folder under root. A song that fails is
// logged and skipped; a negative confirm stops the batch after songs already
// started finish.
func (c *Converter) ConvertAll(ctx context.Context, root string, confirm Confirm) (Result, error) {
	if _, err := os.Stat(root); err != nil {
		return Result{}, errors.Wrap(err, "could not read source root")
	}

	var mu sync.Mutex
	var res Result
	var started int

	progress := debounce.New(500 * time.Millisecond)
	report := func() {
		mu.Lock()
		done, failed, total := res.Converted, res.Failed, started
		mu.Unlock()
		log.Infof("converted %d of %d songs (%d failed)", done, total, failed)
	}

	g := new(errgroup.Group)
	g.SetLimit(c.opts.Workers)

	walk(root, func(songDir string) bool {
		if ctx.Err() != nil {
			return false
		}
		if confirm != nil && !confirm(Label(songDir)) {
			mu.Lock()
			res.Aborted = true
			mu.Unlock()
			return false
		}

		mu.Lock()
		started++
		mu.Unlock()

		g.Go(func() error {
			_, err := c.ConvertSong(ctx, songDir)
			mu.Lock()
			if err != nil {
				res.Failed++
			} else {
				res.Converted++
			}
			mu.Unlock()
			if err != nil {
				log.WithError(err).WithField("dir", songDir).Warn("skipping song")
			}
			progress(report)
			return nil
		})
		return true
	})

	g.Wait()
	// replace any pending debounced report with a no-op
	progress(func() {})
	report()
	return res, ctx.Err()
}
