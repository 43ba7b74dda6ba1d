package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/chatlens/chatlens/config"
	"github.com/chatlens/chatlens/orchestrator"
	"github.com/chatlens/chatlens/scoring"
)

var (
	configPath string
	conf       *cfg.Root

	flagAnonymize    bool
	flagBatchSize    int
	flagWorkers      int
	flagLanguageHint string
	flagOut          string
)

var rootCmd = &cobra.Command{
	Use:           "chatlens",
	Short:         "Sentiment, emotion and toxicity analysis for chat transcripts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		var err error
		conf, err = cfg.Load(configPath)
		if err != nil {
			return err
		}
		level, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
		if err != nil {
			level = logrus.InfoLevel
		}
		logrus.SetLevel(level)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <chat.txt>",
	Short: "Run the full pipeline over one exported transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}

		anonymize := conf.Analysis.Anonymize
		if cmd.Flags().Changed("anonymize") {
			anonymize = flagAnonymize
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipeline := orchestrator.NewPipeline(conf, buildModels(conf))
		res, err := pipeline.Run(ctx, orchestrator.Input{
			RawTranscript: string(raw),
			Config: orchestrator.RunConfig{
				Anonymize:    anonymize,
				BatchSize:    flagBatchSize,
				Workers:      flagWorkers,
				LanguageHint: flagLanguageHint,
			},
		})
		if err != nil {
			return err
		}

		outDir := flagOut
		if outDir == "" {
			outDir = conf.Paths.Outputs
		}
		sid, msgPath, sumPath, err := orchestrator.Persist(outDir, res)
		if err != nil {
			return fmt.Errorf("persist results: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"session":  sid,
			"messages": msgPath,
			"summary":  sumPath,
			"status":   res.Status,
		}).Info("analysis written")
		if res.Status != orchestrator.StatusCompleted {
			return fmt.Errorf("run %s: %s", res.Status, res.FailureReason)
		}
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the scorers and classifiers the current config registers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		models := buildModels(conf)
		for _, name := range models.ScorerNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "sentiment\t%s\n", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "emotion\t%s\n", models.Emotion().Name())
		fmt.Fprintf(cmd.OutOrStdout(), "toxicity\t%s\n", models.Toxicity().Name())
		return nil
	},
}

// buildModels registers the backends the configuration calls for. The
// lexicon scorers are always on; ONNX backends join when their model
// files are configured, the LLM scorer when enabled with a key present.
func buildModels(c *cfg.Root) *scoring.Models {
	models := scoring.NewModels()
	models.RegisterScorer(scoring.NewCompoundScorer())
	models.RegisterScorer(scoring.NewPatternScorer())

	if c.Models.Sentiment.Configured() {
		models.RegisterScorer(scoring.NewTransformerScorer(scoring.ONNXConfig{
			ModelPath:     c.Models.Sentiment.ModelPath,
			TokenizerPath: c.Models.Sentiment.TokenizerPath,
			LibraryPath:   c.Models.OnnxLibrary,
		}))
	}
	if c.Models.LLM.Enabled {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			models.RegisterScorer(scoring.NewLLMScorer(key, c.Models.LLM.BaseURL, c.Models.LLM.Model))
		} else {
			logrus.Warn("llm scorer enabled but OPENAI_API_KEY is unset, skipping")
		}
	}

	if c.Models.Emotion.Configured() {
		models.SetEmotion(scoring.NewONNXEmotion(scoring.ONNXConfig{
			ModelPath:     c.Models.Emotion.ModelPath,
			TokenizerPath: c.Models.Emotion.TokenizerPath,
			LibraryPath:   c.Models.OnnxLibrary,
		}))
	} else {
		models.SetEmotion(scoring.NewLexiconEmotion())
	}
	if c.Models.Toxicity.Configured() {
		models.SetToxicity(scoring.NewONNXToxicity(scoring.ONNXConfig{
			ModelPath:     c.Models.Toxicity.ModelPath,
			TokenizerPath: c.Models.Toxicity.TokenizerPath,
			LibraryPath:   c.Models.OnnxLibrary,
		}))
	} else {
		models.SetToxicity(scoring.NewRuleToxicity())
	}
	return models
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	analyzeCmd.Flags().BoolVar(&flagAnonymize, "anonymize", true, "replace participant names with stable labels")
	analyzeCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "messages per scoring batch (0: config default)")
	analyzeCmd.Flags().IntVar(&flagWorkers, "workers", 0, "scoring workers (0: number of CPUs)")
	analyzeCmd.Flags().StringVar(&flagLanguageHint, "language-hint", "", "language to assume when detection has no signal")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "", "output directory (default: configured outputs root)")
	rootCmd.AddCommand(analyzeCmd, modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("chatlens failed")
	}
}
