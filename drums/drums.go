// Package drums turns a drum track's chart notes into kit-piece hits.
//
// Chart notes are laid out in one five-lane block per difficulty (kick, snare,
// hi-hat, ride, crash). Which physical piece a lane means depends on the
// animation notes below the chart range and on the tom markers above it, both
// of which hold their value until the chart redefines them.
package drums

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jsphweid/chartconv/chord"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	log "github.com/sirupsen/logrus"
)

// State is the per-track animation state. Flags change only when their
// modifier note appears in a chord.
type State struct {
	HiHatOpen   bool
	HiHat       bool
	Percussion  bool
	Snare       bool
	Crash1      bool
	Crash2      bool
	Choke1      bool
	Choke2      bool
	Ride        bool
	Tom1Anim    bool
	Tom1Present bool
	Tom2Present bool
	Tom3Present bool

	// Disco swaps the expert snare and hi-hat lanes.
	Disco bool
}

func (s *State) applyModifier(note uint8, on bool) {
	switch note {
	case 25:
		s.HiHatOpen = on
	case 26, 27, 28, 29:
		s.Snare = on
	case 30, 31:
		s.HiHat = on
	case 32:
		s.Percussion = on
	case 34, 35, 36, 37:
		s.Crash1 = on
	case 38, 39, 44, 45:
		s.Crash2 = on
	case 40:
		s.Choke1 = on
	case 41:
		s.Choke2 = on
	case 42, 43:
		s.Ride = on
	case 46, 47:
		s.Tom1Anim = on
	case 110:
		s.Tom1Present = on
	case 111:
		s.Tom2Present = on
	case 112:
		s.Tom3Present = on
	}
}

var mixPattern = regexp.MustCompile(`^\[mix 3 drums\d+(\w*)\]$`)

// ApplyText handles expert mix markers: "[mix 3 drums0d]" turns the disco
// flip on, any other expert mix marker turns it off.
func (s *State) ApplyText(text string) {
	m := mixPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return
	}
	disco := m[1] == "d"
	if disco != s.Disco {
		log.WithField("marker", text).Debugf("disco flip %v", disco)
	}
	s.Disco = disco
}

type hit struct {
	micros int64
	note   model.DrumNote
}

// Resolver walks one drum track's chords. It must not be shared between
// tracks.
type Resolver struct {
	State State
	hits  []hit
}

func NewResolver() *Resolver {
	return &Resolver{}
}

type resolution struct {
	piece        model.KitPiece
	articulation model.Articulation
	flam         bool
	choke        bool
}

func (r *Resolver) resolve(c chord.Chord, note uint8, tier model.Difficulty) resolution {
	s := &r.State
	base := tier.BaseNote()
	lane := note - base
	if s.Disco && !s.Tom1Present && tier == model.Expert {
		switch lane {
		case 1:
			lane = 2
		case 2:
			lane = 1
		}
	}

	res := resolution{piece: model.NoKitPiece}
	active := c.Hit(note)

	switch lane {
	case 0:
		res.piece = model.Kick
	case 1:
		res.piece = model.Snare
	case 2:
		if s.Tom1Present {
			res.piece = model.Tom1
			if active && c.Hit(base+1) {
				res.piece = model.NoKitPiece
				res.flam = true
			}
			break
		}
		res.piece = model.HiHat
		if s.HiHatOpen && !s.Ride {
			res.articulation = model.HiHatOpen
		}
		if !s.HiHat {
			switch {
			case s.Crash1 && s.Crash2:
				res.piece = model.Crash2
			case s.Crash1:
				if c.Hit(base + 4) {
					res.piece = model.Crash2
				} else {
					res.piece = model.Crash
				}
			case s.Crash2:
				res.piece = model.Crash2
			}
			if res.piece != model.HiHat {
				res.articulation = model.NoArticulation
			}
		}
	case 3:
		if s.Tom2Present {
			res.piece = model.Tom2
			break
		}
		res.piece = model.Ride
		if !s.Ride && active {
			switch {
			case s.HiHat && s.HiHatOpen:
				res.piece = model.HiHat
				res.articulation = model.HiHatOpen
			case s.Crash1:
				// a crash lane hit in the same chord resolves the same way
				res.piece = model.Crash2
			case s.Crash2:
				res.piece = model.Crash2
			}
		}
	case 4:
		if s.Tom3Present {
			res.piece = model.Tom3
			break
		}
		res.piece = model.Crash
		if !s.Crash1 && s.Crash2 {
			res.piece = model.Crash2
		}
	}

	isCrash := res.piece == model.Crash || res.piece == model.Crash2
	if isCrash && active && tier == model.Expert && (s.Choke1 || s.Choke2) {
		res.choke = true
	}
	return res
}

// Resolve updates the animation state from the chord's modifier notes, then
// resolves every chart note in it. Only expert notes are emitted; lower tiers
// still count toward flam detection.
func (r *Resolver) Resolve(c chord.Chord) {
	notes := c.SortedNotes()
	for _, note := range notes {
		r.State.applyModifier(note, c.Hit(note))
	}

	var flam, choke bool
	var flamVelocity, chokeVelocity uint8
	var emitted []hit
	for _, note := range notes {
		tier := model.DifficultyOf(note)
		if tier == model.NoDifficulty {
			continue
		}
		res := r.resolve(c, note, tier)
		velocity := c.Velocity(note)
		if res.flam && !flam {
			flam = true
			flamVelocity = c.Velocity(tier.BaseNote() + 1)
		}
		if res.choke && !choke {
			choke = true
			chokeVelocity = velocity
		}
		if res.piece == model.NoKitPiece || velocity == 0 || tier != model.Expert {
			continue
		}
		emitted = append(emitted, hit{
			micros: c.Micros,
			note: model.DrumNote{
				KitPiece:     res.piece,
				Articulation: res.articulation,
				Velocity:     velocity,
			},
		})
	}

	r.hits = append(r.hits, emitted...)
	if flam || choke {
		log.WithFields(log.Fields{
			"chord": chord.CreateChordKey(notes),
			"flam":  flam,
			"choke": choke,
		}).Debug("synthesized drum hits")
	}
	if flam {
		r.hits = append(r.hits, hit{
			micros: c.Micros + int64(c.Tempo)/10,
			note:   model.DrumNote{KitPiece: model.Snare, Velocity: flamVelocity},
		})
	}
	if choke {
		r.hits = append(r.hits, hit{
			micros: c.Micros,
			note: model.DrumNote{
				KitPiece:     model.Crash,
				Articulation: model.CymbalChoke,
				Velocity:     chokeVelocity,
			},
		})
	}
}

// Notes returns the hits resolved so far ordered by time, then kit piece.
func (r *Resolver) Notes() []model.DrumNote {
	hits := make([]hit, len(r.hits))
	copy(hits, r.hits)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].micros != hits[j].micros {
			return hits[i].micros < hits[j].micros
		}
		return hits[i].note.KitPiece < hits[j].note.KitPiece
	})

	res := make([]model.DrumNote, 0, len(hits))
	for _, h := range hits {
		n := h.note
		n.TimeOffset = model.Seconds(h.micros)
		res = append(res, n)
	}
	return res
}

// Extract resolves a whole drum track.
func Extract(events model.Track, cursor *tempo.Cursor) ([]model.DrumNote, error) {
	r := NewResolver()
	w := chord.Walker{
		OnEvent: func(evt model.Event, _ int64) {
			if evt.Kind == model.TextMarker {
				r.State.ApplyText(evt.Text)
			}
		},
		OnChord: func(c chord.Chord) error {
			r.Resolve(c)
			return nil
		},
	}
	if err := w.Walk(events, cursor); err != nil {
		return nil, err
	}
	return r.Notes(), nil
}
