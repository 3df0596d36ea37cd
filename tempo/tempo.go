package tempo

import (
	"sort"

	"github.com/jsphweid/chartconv/model"
)

// Entry is one tempo change: from Tick on, a quarter note lasts
// MicrosPerBeat microseconds.
type Entry struct {
	Tick          uint64
	MicrosPerBeat uint32
}

type Timeline struct {
	entries []Entry
}

// BuildTimeline orders the entries by tick. Entries sharing a tick keep their
// source order, so the last one wins.
func BuildTimeline(entries []Entry) *Timeline {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})
	return &Timeline{entries: sorted}
}

// Collect gathers every tempo change in the song at its absolute tick.
func Collect(tracks []model.Track) []Entry {
	var res []Entry
	for _, events := range tracks {
		var absTicks uint64
		for _, evt := range events {
			absTicks += uint64(evt.Delta)
			if evt.Kind == model.TempoChange {
				res = append(res, Entry{Tick: absTicks, MicrosPerBeat: evt.Tempo})
			}
		}
	}
	return res
}

func (t *Timeline) Entries() []Entry {
	return t.entries
}

func (t *Timeline) Empty() bool {
	return len(t.entries) == 0
}

// Covers reports whether a tempo is in effect at tick.
func (t *Timeline) Covers(tick uint64) bool {
	return !t.Empty() && t.entries[0].Tick <= tick
}

func span(ticks uint64, microsPerBeat uint32, ticksPerBeat uint32) int64 {
	if ticksPerBeat == 0 {
		return 0
	}
	return int64(ticks) * int64(microsPerBeat) / int64(ticksPerBeat)
}

// TicksToMicroseconds converts the span [fromTick, toTick) to microseconds,
// switching tempo at every change crossed on the way. Ticks before the first
// entry use the first entry's tempo.
func (t *Timeline) TicksToMicroseconds(fromTick, toTick uint64, ticksPerBeat uint32) int64 {
	if t.Empty() || toTick <= fromTick {
		return 0
	}

	idx := 0
	current := t.entries[0].MicrosPerBeat
	for idx < len(t.entries) && t.entries[idx].Tick <= fromTick {
		current = t.entries[idx].MicrosPerBeat
		idx++
	}

	var micros int64
	tick := fromTick
	for idx < len(t.entries) && t.entries[idx].Tick < toTick {
		micros += span(t.entries[idx].Tick-tick, current, ticksPerBeat)
		tick = t.entries[idx].Tick
		current = t.entries[idx].MicrosPerBeat
		idx++
	}
	return micros + span(toTick-tick, current, ticksPerBeat)
}

// Cursor follows one track through the timeline. Time is accumulated per
// tempo segment with TicksToMicroseconds, so it stays exact at every change.
type Cursor struct {
	timeline     *Timeline
	ticksPerBeat uint32

	tick   uint64
	next   int
	tempo  uint32
	segAt  uint64
	segUs  int64
	micros int64
}

func (t *Timeline) NewCursor(ticksPerBeat uint32) *Cursor {
	c := &Cursor{timeline: t, ticksPerBeat: ticksPerBeat}
	if !t.Empty() {
		c.tempo = t.entries[0].MicrosPerBeat
	}
	return c
}

// Advance moves the cursor delta ticks forward and returns the new time in
// microseconds.
func (c *Cursor) Advance(delta uint32) int64 {
	c.tick += uint64(delta)
	entries := c.timeline.entries
	for c.next < len(entries) && entries[c.next].Tick <= c.tick {
		c.segUs += c.timeline.TicksToMicroseconds(c.segAt, entries[c.next].Tick, c.ticksPerBeat)
		c.segAt = entries[c.next].Tick
		c.tempo = entries[c.next].MicrosPerBeat
		c.next++
	}
	c.micros = c.segUs + c.timeline.TicksToMicroseconds(c.segAt, c.tick, c.ticksPerBeat)
	return c.micros
}

func (c *Cursor) Tick() uint64 {
	return c.tick
}

func (c *Cursor) Micros() int64 {
	return c.micros
}

// Tempo is the length of a quarter note in microseconds at the cursor.
func (c *Cursor) Tempo() uint32 {
	return c.tempo
}

// Established reports whether a tempo is in effect at the cursor.
func (c *Cursor) Established() bool {
	return c.timeline.Covers(c.tick)
}
