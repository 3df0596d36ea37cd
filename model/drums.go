package model

import "github.com/pkg/errors"

// KitPiece ordinals double as the tie-break when sorting drum notes that
// share a time offset.
type KitPiece uint8

const (
	Kick KitPiece = iota
	Snare
	HiHat
	Ride
	Crash
	Crash2
	Tom1
	Tom2
	Tom3
	NoKitPiece
)

var kitPieceNames = [...]string{"Kick", "Snare", "HiHat", "Ride", "Crash", "Crash2", "Tom1", "Tom2", "Tom3", "None"}

func (k KitPiece) String() string {
	if int(k) < len(kitPieceNames) {
		return kitPieceNames[k]
	}
	return "None"
}

func (k KitPiece) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *KitPiece) UnmarshalText(b []byte) error {
	for i, name := range kitPieceNames {
		if name == string(b) {
			*k = KitPiece(i)
			return nil
		}
	}
	return errors.Errorf("unknown kit piece %q", b)
}

type Articulation uint8

const (
	NoArticulation Articulation = iota
	HiHatOpen
	CymbalChoke
)

var articulationNames = [...]string{"None", "HiHatOpen", "CymbalChoke"}

func (a Articulation) String() string {
	if int(a) < len(articulationNames) {
		return articulationNames[a]
	}
	return "None"
}

func (a Articulation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Articulation) UnmarshalText(b []byte) error {
	for i, name := range articulationNames {
		if name == string(b) {
			*a = Articulation(i)
			return nil
		}
	}
	return errors.Errorf("unknown articulation %q", b)
}

type Difficulty int8

const (
	NoDifficulty Difficulty = iota - 1
	Easy
	Medium
	Hard
	Expert
)

func GetNoteOctave(note uint8) int {
	return int(note)/12 - 1
}

// DifficultyOf maps the octave of a drum chart note to its play tier.
// Octaves outside 4..7 carry no tier.
func DifficultyOf(note uint8) Difficulty {
	switch GetNoteOctave(note) {
	case 4:
		return Easy
	case 5:
		return Medium
	case 6:
		return Hard
	case 7:
		return Expert
	}
	return NoDifficulty
}

// BaseNote is the lowest note number of a tier's five-lane block (the kick).
func (d Difficulty) BaseNote() uint8 {
	return uint8(60 + 12*int(d))
}
