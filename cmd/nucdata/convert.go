package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nucdata/nucdata/internal/cache"
	"github.com/nucdata/nucdata/internal/convert"
	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/fetcher"
	"github.com/nucdata/nucdata/internal/release"
	"github.com/nucdata/nucdata/internal/utils"
)

var convertCmd = &cobra.Command{
	Use:   "convert <library> <version>",
	Short: "Download and convert a data release to HDF5",
	Long: `Convert downloads the archives of an evaluated data release, extracts
them, runs every data file through the conversion engine and writes an HDF5
library with a cross_sections.xml manifest.

Run "nucdata releases" to list the known libraries and versions.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List known data library releases",
	RunE:  runReleases,
}

func init() {
	convertCmd.Flags().StringP("destination", "d", "", "Output directory (default <library>-<version>-hdf5)")
	convertCmd.Flags().String("work-dir", ".", "Directory for downloads and extraction")
	convertCmd.Flags().StringSliceP("particles", "p", nil, "Particle types to process (default all in release)")
	convertCmd.Flags().Bool("no-download", false, "Do not download, use archives already present")
	convertCmd.Flags().Bool("no-extract", false, "Do not extract, use extracted files already present")
	convertCmd.Flags().Bool("cleanup", false, "Remove download and extraction directories when done")
	convertCmd.Flags().String("libver", "", "HDF5 file versioning (earliest or latest)")
	convertCmd.Flags().Float64Slice("temperatures", nil, "Processing temperatures in Kelvin (ENDF sources)")
	convertCmd.Flags().Bool("no-progress", false, "Disable progress bars")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	catalog := release.DefaultCatalog()
	rel, err := catalog.Lookup(args[0], args[1])
	if err != nil {
		return err
	}

	particles, err := parseParticles(cmd)
	if err != nil {
		return err
	}

	destination, _ := cmd.Flags().GetString("destination")
	workDir, _ := cmd.Flags().GetString("work-dir")
	noDownload, _ := cmd.Flags().GetBool("no-download")
	noExtract, _ := cmd.Flags().GetBool("no-extract")
	cleanup, _ := cmd.Flags().GetBool("cleanup")
	libver, _ := cmd.Flags().GetString("libver")
	temperatures, _ := cmd.Flags().GetFloat64Slice("temperatures")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	if libver == "" {
		libver = cfg.Converter.LibVer
	}
	if len(temperatures) == 0 {
		temperatures = cfg.Converter.Temperatures
	}

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

	if compMB, uncompMB := rel.DownloadSize(particles); compMB > 0 {
		log.Info().
			Int("download_mb", compMB).
			Int("extracted_mb", uncompMB).
			Msg("disk space needed")
	}

	pipeline, err := convert.New(convert.Options{
		Release:      rel,
		Particles:    particles,
		Destination:  utils.ExpandPath(destination),
		WorkDir:      utils.ExpandPath(workDir),
		Download:     !noDownload,
		Extract:      !noExtract,
		Cleanup:      cleanup,
		LibVer:       libver,
		Temperatures: temperatures,
		Concurrency:  cfg.Concurrency.Workers,
		Progress:     !noProgress,
		Converter:    convert.NewExternalConverter(cfg.Converter.Command),
		Client:       client,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	lib, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	for _, w := range pipeline.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("Converted %s %s: %d entries\n", rel.Library, rel.Version, lib.Len())
	return nil
}

func parseParticles(cmd *cobra.Command) ([]domain.Particle, error) {
	names, _ := cmd.Flags().GetStringSlice("particles")
	var particles []domain.Particle
	for _, name := range names {
		switch p := domain.Particle(strings.ToLower(name)); p {
		case domain.ParticleNeutron, domain.ParticlePhoton, domain.ParticleThermal:
			particles = append(particles, p)
		default:
			return nil, fmt.Errorf("unknown particle type %q (neutron, photon or thermal)", name)
		}
	}
	return particles, nil
}

func runReleases(cmd *cobra.Command, args []string) error {
	catalog := release.DefaultCatalog()
	for _, lib := range catalog.Libraries() {
		fmt.Printf("%s: %s\n", lib, strings.Join(catalog.Versions(lib), ", "))
	}
	return nil
}
