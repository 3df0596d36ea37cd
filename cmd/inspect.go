package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/chartconv/midi"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
	"github.com/jsphweid/chartconv/track"
	"github.com/jsphweid/chartconv/util"
	"github.com/spf13/cobra"
)

var showEvents bool

func init() {
	inspectCmd.Flags().BoolVarP(&showEvents, "events", "e", false, "print every event")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <notes.mid>",
	Short: "Lists the tracks of a MIDI file",
	Long:  `Lists the tracks of a MIDI file with the role each one is converted as.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := midi.Load(args[0])
		if err != nil {
			return err
		}
		inspect(os.Stdout, song)
		return nil
	},
}

func inspect(w io.Writer, song model.Song) {
	timeline := tempo.BuildTimeline(tempo.Collect(song.Tracks))
	fmt.Fprintf(w, "ticks per beat: %d\n", song.TicksPerBeat)
	fmt.Fprintf(w, "tempo changes: %d\n", len(timeline.Entries()))

	for i, events := range song.Tracks {
		name := track.Name(events)
		fmt.Fprintf(w, "track %d %q (%v)\n", i, name, track.Classify(name))

		counts := make(map[string]int)
		for _, evt := range events {
			counts[evt.Kind.String()]++
		}
		var total []int
		for _, kind := range util.GetSortedKeys(counts) {
			fmt.Fprintf(w, "  %s: %d\n", kind, counts[kind])
			total = append(total, counts[kind])
		}
		fmt.Fprintf(w, "  events: %d\n", util.Sum(total))
		fmt.Fprintf(w, "  notes: %d\n", counts[model.NoteOn.String()])

		if showEvents {
			for _, evt := range events {
				fmt.Fprintf(w, "    %s\n", midi.Describe(evt))
			}
		}
	}
}
