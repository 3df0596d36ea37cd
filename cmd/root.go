package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chartconv",
	Short: "Converts Rock Band song folders into chart JSON",
	Long: `Converts Rock Band song folders (notes.mid + song.ini) into timed JSON
charts for drums, pro keys and vocals, plus song structure.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every track as it is converted")
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}
