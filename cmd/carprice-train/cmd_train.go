package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/priceworks/carprice/pkg/logging"
	"github.com/priceworks/carprice/pkg/training"
)

var (
	flagData         string
	flagOut          string
	flagSeed         int64
	flagHoldout      float64
	flagTrees        int
	flagLearningRate float64
	flagLogLevel     string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the model on a sales CSV and write the artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.Config{
			Level:  logging.LogLevel(flagLogLevel),
			Pretty: true,
		})

		cfg := training.DefaultConfig(flagData, flagOut)
		cfg.Seed = flagSeed
		cfg.HoldoutFraction = flagHoldout
		cfg.Hyperparams.NumTrees = flagTrees
		cfg.Hyperparams.LearningRate = flagLearningRate

		art, err := training.Run(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("artifact %s written to %s\n", art.RunID, flagOut)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&flagData, "data", "data/sales.csv", "historical sales CSV")
	trainCmd.Flags().StringVar(&flagOut, "out", "models/artifact.json", "artifact output path")
	trainCmd.Flags().Int64Var(&flagSeed, "seed", 42, "train/holdout shuffle seed")
	trainCmd.Flags().Float64Var(&flagHoldout, "holdout", 0.2, "holdout fraction")
	trainCmd.Flags().IntVar(&flagTrees, "trees", 100, "number of boosting rounds")
	trainCmd.Flags().Float64Var(&flagLearningRate, "learning-rate", 0.1, "boosting learning rate")
	trainCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level")
}
