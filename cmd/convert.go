package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jsphweid/chartconv/catalog"
	"github.com/jsphweid/chartconv/constants"
	"github.com/jsphweid/chartconv/convert"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	destDir string
	workers int
	audio   bool
	yes     bool
)

func init() {
	for _, c := range []*cobra.Command{convertCmd, convertAllCmd} {
		c.Flags().StringVarP(&destDir, "dest", "d", constants.GetDestDir(), "output directory")
		c.Flags().BoolVar(&audio, "audio", false, "copy *.ogg streams next to the charts")
		rootCmd.AddCommand(c)
	}
	convertAllCmd.Flags().IntVarP(&workers, "workers", "w", constants.GetWorkers(), "songs converted at once")
	convertAllCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask before each song")
}

var convertCmd = &cobra.Command{
	Use:   "convert <songDir>",
	Short: "Converts one song folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		dir, err := c.ConvertSong(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

var convertAllCmd = &cobra.Command{
	Use:   "convert-all <root>",
	Short: "Converts every song folder under root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		var confirm convert.Confirm
		if !yes {
			confirm = prompt(bufio.NewReader(os.Stdin))
		}
		res, err := c.ConvertAll(cmd.Context(), args[0], confirm)
		if err != nil {
			return err
		}
		fmt.Printf("converted %d, failed %d\n", res.Converted, res.Failed)
		if res.Aborted {
			fmt.Println("stopped before all songs were converted")
		}
		return nil
	},
}

func newConverter() (*convert.Converter, error) {
	opts := convert.Options{Dest: destDir, Audio: audio, Workers: workers}
	if endpoint := constants.GetCatalogEndpoint(); endpoint != "" {
		cat, err := catalog.New(endpoint, constants.GetCatalogRegion(), constants.GetCatalogTable())
		if err != nil {
			return nil, err
		}
		opts.Catalog = cat
		log.WithField("endpoint", endpoint).Info("publishing to catalog")
	}
	return convert.New(opts), nil
}

// prompt asks on stdout and reads the answer from r. Anything but y or an
// empty line stops the batch.
func prompt(r *bufio.Reader) convert.Confirm {
	return func(label string) bool {
		fmt.Printf("Convert %s? [Y/n] ", label)
		answer, err := r.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "" || answer == "y" || answer == "yes"
	}
}
