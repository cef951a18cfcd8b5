package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvickers/pattern-scout/internal/config"
	"github.com/mvickers/pattern-scout/internal/imaging"
	"github.com/mvickers/pattern-scout/internal/locate"
	"github.com/mvickers/pattern-scout/internal/mask"
	"github.com/mvickers/pattern-scout/internal/ocr"
	"github.com/mvickers/pattern-scout/internal/server"
)

// Version information - set by ldflags during build
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pattern-scout",
	Short: "Multi-instance visual pattern localization",
	Long: `pattern-scout finds every instance of known reference patterns
inside target images, using feature matching and robust homography
fitting. It runs either as a one-shot CLI or as an MCP server over
stdin/stdout.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pattern-scout.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(locateCmd())
	rootCmd.AddCommand(exclusionsCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Flags beat file and environment.
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	logger, err = setupLogging(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// setupLogging builds the process logger. Output goes to stderr so that
// stdout stays clean for MCP protocol traffic and JSON results.
func setupLogging(lc config.LoggingConfig) (*slog.Logger, error) {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", lc.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch lc.Format {
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", lc.Format)
	}
	return slog.New(handler), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger.Info("starting MCP server",
				"version", version,
				"reference_dir", cfg.ReferenceDir)
			srv := server.New(cfg, logger)
			return srv.Run(os.Stdin, os.Stdout)
		},
	}
}

func locateCmd() *cobra.Command {
	var (
		referenceDir   string
		textExclusions bool
	)

	cmd := &cobra.Command{
		Use:   "locate <target-image>",
		Short: "Locate all reference patterns in a target image",
		Long: `Locate runs the full localization pipeline against one target
image and prints the resulting detection set as JSON on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			targetPath := args[0]
			dir := referenceDir
			if dir == "" {
				dir = cfg.ReferenceDir
			}

			cache := imaging.NewImageCache()
			patterns, err := locate.LoadReferenceDir(cache, dir, cfg.Locate)
			if err != nil {
				return fmt.Errorf("failed to load references: %w", err)
			}

			target, err := cache.Load(targetPath)
			if err != nil {
				return fmt.Errorf("failed to load target: %w", err)
			}

			var exclusions []mask.Region
			if textExclusions {
				exclusions, err = buildTextExclusions(targetPath, patterns)
				if err != nil {
					return err
				}
			}

			targetFeatures := locate.BuildTargetFeatures(target, cfg.Locate)
			pipeline := locate.New(cfg.Locate, logger)
			set := pipeline.Run(target, targetFeatures, patterns, exclusions)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		},
	}

	cmd.Flags().StringVar(&referenceDir, "references", "", "reference image directory (default from config)")
	cmd.Flags().BoolVar(&textExclusions, "text-exclusions", false, "detect and exclude text regions first")
	return cmd
}

// buildTextExclusions produces text exclusion regions for the target,
// restricted to words that resemble the known pattern names when OCR is
// enabled.
func buildTextExclusions(targetPath string, patterns []*locate.ReferencePattern) ([]mask.Region, error) {
	if cfg.OCR.Enabled {
		names := make([]string, len(patterns))
		for i, p := range patterns {
			names[i] = p.Name
		}
		src := ocr.TextExclusionSource{
			Language:       cfg.OCR.Language,
			MinConfidence:  cfg.OCR.MinConfidence,
			PatternNames:   names,
			NameSimilarity: cfg.OCR.NameSimilarity,
		}
		regions, err := src.Exclusions(targetPath)
		if err != nil {
			return nil, fmt.Errorf("ocr failed: %w", err)
		}
		return regions, nil
	}

	img, err := imaging.NewImageCache().Load(targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load target: %w", err)
	}
	return ocr.HeuristicTextRegions(img, cfg.OCR.MinConfidence), nil
}

func exclusionsCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "exclusions <image>",
		Short: "Detect text exclusion regions in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]

			var regions []mask.Region
			switch method {
			case "ocr":
				src := ocr.TextExclusionSource{
					Language:       cfg.OCR.Language,
					MinConfidence:  cfg.OCR.MinConfidence,
					NameSimilarity: cfg.OCR.NameSimilarity,
				}
				var err error
				regions, err = src.Exclusions(path)
				if err != nil {
					return fmt.Errorf("ocr failed: %w", err)
				}
			case "heuristic":
				img, err := imaging.NewImageCache().Load(path)
				if err != nil {
					return fmt.Errorf("failed to load image: %w", err)
				}
				regions = ocr.HeuristicTextRegions(img, cfg.OCR.MinConfidence)
			default:
				return fmt.Errorf("unknown method: %s", method)
			}

			if regions == nil {
				regions = []mask.Region{}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(regions)
		},
	}

	cmd.Flags().StringVar(&method, "method", "heuristic", "detection method (ocr, heuristic)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("pattern-scout %s\n", version)
			fmt.Printf("  Build time: %s\n", buildTime)
			fmt.Printf("  Git commit: %s\n", gitCommit)
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
