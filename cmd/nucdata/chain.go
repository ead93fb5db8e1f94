package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nucdata/nucdata/internal/archive"
	"github.com/nucdata/nucdata/internal/cache"
	"github.com/nucdata/nucdata/internal/chain"
	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/fetcher"
	"github.com/nucdata/nucdata/internal/release"
	"github.com/nucdata/nucdata/internal/utils"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Build and edit depletion chains",
}

var chainFetchCmd = &cobra.Command{
	Use:   "fetch <library> <version>",
	Short: "Download the evaluation tapes a depletion chain is built from",
	Long: `Fetch downloads the decay, fission yield and incident-neutron evaluation
tapes for a library release into per-sublibrary directories, extracting
archives and repairing tapes that need it. The parsing engine turns the tapes
into the record dumps "chain build" consumes.`,
	Args: cobra.ExactArgs(2),
	RunE: runChainFetch,
}

var chainBuildCmd = &cobra.Command{
	Use:   "build <records-dir>",
	Short: "Build a depletion chain from evaluation record dumps",
	Long: `Build reads the decay, incident-neutron and fission yield record dumps
the parsing engine wrote into the given directory and assembles them into a
depletion chain XML file.`,
	Args: cobra.ExactArgs(1),
	RunE: runChainBuild,
}

var chainRatiosCmd = &cobra.Command{
	Use:   "ratios <chain-file> <ratios-file>",
	Short: "Apply external branching ratios to a chain",
	Long: `Ratios replaces reaction branchings with ratios from a JSON file mapping
reaction type to parent nuclide to product nuclide to ratio, typically to
split capture between ground and metastable states. All reactions in the
file are applied in one pass.`,
	Args: cobra.ExactArgs(2),
	RunE: runChainRatios,
}

func init() {
	chainFetchCmd.Flags().String("dir", "", "Directory the tapes land in (default <library>-<version>-tapes)")
	chainFetchCmd.Flags().Bool("no-progress", false, "Disable progress bars")

	chainBuildCmd.Flags().StringP("output", "o", "chain.xml", "Output chain file")
	chainBuildCmd.Flags().Float64("halflife-cutoff", 0, "Half-life in seconds below which missing decay products are followed (default one day)")

	chainRatiosCmd.Flags().StringP("output", "o", "", "Output chain file (default in place)")
	chainRatiosCmd.Flags().Bool("strict", false, "Fail on nuclides missing from the chain")

	chainCmd.AddCommand(chainFetchCmd)
	chainCmd.AddCommand(chainBuildCmd)
	chainCmd.AddCommand(chainRatiosCmd)
}

func runChainFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	sets, err := release.DefaultCatalog().ChainTapes(args[0], args[1])
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if dir == "" {
		dir = args[0] + "-" + args[1] + "-tapes"
	}
	dir = utils.ExpandPath(dir)

	ctx, cancel := signalContext(log)
	defer cancel()

	var ledger domain.Ledger
	if cfg.Ledger.Enabled {
		l, err := cache.NewLedger(cache.Options{Directory: cfg.Ledger.Directory})
		if err != nil {
			log.Warn().Err(err).Msg("download ledger unavailable, continuing without it")
		} else {
			defer l.Close()
			ledger = l
		}
	}

	client := fetcher.NewClient(fetcher.ClientOptions{
		Timeout:     cfg.Download.Timeout,
		MaxRetries:  cfg.Download.MaxRetries,
		AsBrowser:   cfg.Download.AsBrowser,
		InsecureTLS: cfg.Download.InsecureTLS,
		Ledger:      ledger,
		Progress:    !noProgress,
		Logger:      log,
	})

	for _, ts := range sets {
		sub := filepath.Join(dir, ts.Sub)
		for _, a := range ts.Archives {
			url, err := fetcher.JoinURL(ts.BaseURL, a.Name)
			if err != nil {
				return err
			}
			local, err := client.Download(ctx, url, sub, a.MD5)
			if err != nil {
				return err
			}
			if archive.Supported(local) {
				log.Info().Str("archive", filepath.Base(local)).Msg("Extracting")
				if err := archive.Extract(local, sub); err != nil {
					return err
				}
			}
			if name, ok := ts.Fixups[filepath.Base(local)]; ok {
				fix, ok := release.GetTapeFixup(name)
				if !ok {
					return fmt.Errorf("unknown tape fixup %q for %s", name, local)
				}
				fixed, err := fix(local)
				if err != nil {
					return err
				}
				log.Info().Str("tape", filepath.Base(fixed)).Msg("Repaired tape")
			}
		}
	}

	fmt.Printf("Fetched %s %s chain tapes into %s\n", args[0], args[1], dir)
	return nil
}

func runChainBuild(cmd *cobra.Command, args []string) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	cutoff, _ := cmd.Flags().GetFloat64("halflife-cutoff")

	source, err := chain.NewJSONSource(utils.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	builder := chain.NewBuilder(chain.BuildOptions{
		HalfLifeCutoff: cutoff,
		Logger:         log,
	})
	c, err := builder.Build(ctx, source)
	if err != nil {
		return err
	}

	if err := c.Export(utils.ExpandPath(output)); err != nil {
		return err
	}
	fmt.Printf("Built chain with %d nuclides: %s\n", c.Len(), output)
	return nil
}

func runChainRatios(cmd *cobra.Command, args []string) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")

	chainPath := utils.ExpandPath(args[0])
	if output == "" {
		output = chainPath
	} else {
		output = utils.ExpandPath(output)
	}

	c, err := chain.Import(chainPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(utils.ExpandPath(args[1]))
	if err != nil {
		return err
	}
	var ratios map[string]map[string]map[string]float64
	if err := json.Unmarshal(data, &ratios); err != nil {
		return fmt.Errorf("parsing ratios file: %w", err)
	}

	if err := chain.ApplyBranchRatios(c, ratios, strict, log); err != nil {
		return err
	}
	if err := c.Export(output); err != nil {
		return err
	}
	fmt.Printf("Applied branch ratios for %d reactions: %s\n", len(ratios), output)
	return nil
}
