package model

import "github.com/pkg/errors"

var (
	ErrNoTempo         = errors.New("can't have a midi note before tempo map is established")
	ErrDanglingNoteOff = errors.New("note off without previous note on")
)
