package main

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/subclone/config"
	"github.com/katalvlaran/subclone/mixture"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliFlags holds the values bound to command-line flags.
type cliFlags struct {
	configPath string

	mutations string
	segments  string
	purity    float64
	sample    string
	reference string
	outDir    string

	workers int
	mode    string
	feature string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{workers: -1}
	root := &cobra.Command{
		Use:   "subclone",
		Short: "Subclonal deconvolution of tumour sequencing data",
		Long: `subclone annotates somatic mutations with copy-number segments, checks
peak consistency against the given purity, estimates cancer cell fractions,
fits tail-plus-cluster mixtures over a (k, seed) grid, selects the best model
and enumerates the clone trees compatible with the cluster prevalences.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "YAML or JSON configuration file")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write its artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, f)
		},
	}
	run.Flags().StringVarP(&f.mutations, "mutations", "m", "", "mutation table (TSV: chr from to ref alt DP NV [is_driver])")
	run.Flags().StringVarP(&f.segments, "segments", "s", "", "segment table (TSV: chr from to major minor)")
	run.Flags().Float64VarP(&f.purity, "purity", "p", 0, "tumour purity in (0,1]")
	run.Flags().StringVar(&f.sample, "sample", "", "sample identifier")
	run.Flags().StringVar(&f.reference, "reference", "GRCh38", "reference genome")
	run.Flags().StringVarP(&f.outDir, "out", "o", "subclone-out", "output directory")
	run.Flags().IntVar(&f.workers, "workers", -1, "concurrent fits (0: one per CPU; default from config)")
	run.Flags().StringVar(&f.mode, "mode", "", "grid mode: reduced or full (default from config)")
	run.Flags().StringVar(&f.feature, "feature", "", "fitted feature: vaf or ccf (default from config)")
	for _, name := range []string{"mutations", "segments", "purity", "sample"} {
		_ = run.MarkFlagRequired(name)
	}

	show := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	root.AddCommand(run, show)
	return root
}

// loadConfig applies file, environment and flag values in increasing
// priority.
func loadConfig(f *cliFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.workers >= 0 {
		cfg.Workers = f.workers
	}
	if f.mode != "" {
		cfg.Mode = strings.ToLower(f.mode)
	}
	if f.feature != "" {
		cfg.Mixture.Feature = mixture.Feature(strings.ToLower(f.feature))
	}
	return cfg, cfg.Validate()
}
