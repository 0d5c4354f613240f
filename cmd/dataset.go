package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optviz/gradlab/internal/dataset"
)

var (
	datasetOut   string
	datasetKind  string
	datasetSize  int
	datasetNoise float64
	datasetSeed  int64
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate and inspect 2-D classification datasets",
}

var generateDatasetCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a labeled 2-D dataset and write it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var set *dataset.Set
		switch datasetKind {
		case "two-clusters":
			set = dataset.TwoClusters(datasetSize, datasetNoise, datasetSeed)
		case "crescent":
			set = dataset.Crescent(datasetSize, datasetNoise, datasetSeed)
		default:
			return fmt.Errorf("unknown dataset kind: %q", datasetKind)
		}

		if err := set.Save(datasetOut); err != nil {
			return err
		}

		fmt.Printf("Wrote %d points to %s\n", len(set.Points), datasetOut)
		return nil
	},
}

var statsDatasetCmd = &cobra.Command{
	Use:   "stats <path>",
	Short: "Print summary statistics of a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := dataset.Load(args[0])
		if err != nil {
			return err
		}

		stats := set.Summarize()
		fmt.Printf("Points: %d (positive: %d, negative: %d)\n", stats.Count, stats.Positives, stats.Count-stats.Positives)
		fmt.Printf("x1: mean %.4f, stddev %.4f\n", stats.MeanX1, stats.StdX1)
		fmt.Printf("x2: mean %.4f, stddev %.4f\n", stats.MeanX2, stats.StdX2)
		return nil
	},
}

func init() {
	generateDatasetCmd.Flags().StringVar(&datasetOut, "out", "dataset.json", "Output JSON path")
	generateDatasetCmd.Flags().StringVar(&datasetKind, "kind", "two-clusters", "Dataset kind: two-clusters, crescent")
	generateDatasetCmd.Flags().IntVar(&datasetSize, "size", 100, "Total number of points, split evenly between classes")
	generateDatasetCmd.Flags().Float64Var(&datasetNoise, "noise", 0.5, "Noise standard deviation")
	generateDatasetCmd.Flags().Int64Var(&datasetSeed, "seed", 42, "Random seed")

	datasetCmd.AddCommand(generateDatasetCmd)
	datasetCmd.AddCommand(statsDatasetCmd)
	rootCmd.AddCommand(datasetCmd)
}
