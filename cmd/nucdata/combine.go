package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nucdata/nucdata/internal/combine"
	"github.com/nucdata/nucdata/internal/library"
	"github.com/nucdata/nucdata/internal/utils"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine several data libraries into one",
	Long: `Combine merges multiple data libraries into a single library under the
destination directory. Libraries are given in order of preference: when two
libraries provide data for the same materials, the one listed first wins.

The destination receives a ` + library.DefaultManifestName + ` manifest and,
unless --no-copy is given, a copy of every selected data file.`,
	Args: cobra.NoArgs,
	RunE: runCombine,
}

func init() {
	combineCmd.Flags().StringP("destination", "d", "", "Destination directory (required)")
	combineCmd.Flags().StringSliceP("libraries", "l", nil, "Source library directories in order of preference (required)")
	combineCmd.Flags().StringP("outputfilename", "o", library.DefaultManifestName, "Manifest filename in the destination")
	combineCmd.Flags().Bool("no-copy", false, "Reference data files in place instead of copying them")
	_ = combineCmd.MarkFlagRequired("destination")
	_ = combineCmd.MarkFlagRequired("libraries")
}

func runCombine(cmd *cobra.Command, args []string) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	destination, _ := cmd.Flags().GetString("destination")
	sources, _ := cmd.Flags().GetStringSlice("libraries")
	manifestName, _ := cmd.Flags().GetString("outputfilename")
	noCopy, _ := cmd.Flags().GetBool("no-copy")

	destination = utils.ExpandPath(destination)
	for i, s := range sources {
		sources[i] = utils.ExpandPath(s)
	}

	combiner, err := combine.New(combine.Options{
		Sources:      sources,
		Destination:  destination,
		ManifestName: manifestName,
		CopyFiles:    !noCopy,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	lib, err := combiner.Run()
	if err != nil {
		return err
	}

	fmt.Printf("Combined %d libraries into %s (%d entries)\n", len(sources), destination, lib.Len())
	return nil
}
