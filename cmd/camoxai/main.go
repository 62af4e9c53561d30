package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nvr-ai/go-camoxai/config"
	"github.com/nvr-ai/go-camoxai/imageio"
	"github.com/nvr-ai/go-camoxai/logging"
	"github.com/nvr-ai/go-camoxai/pipeline"
	"github.com/nvr-ai/go-camoxai/report"
	"github.com/nvr-ai/go-camoxai/runner"
	"github.com/nvr-ai/go-camoxai/util"
)

const (
	// DefaultConfigPath is read when present; a missing file means defaults.
	DefaultConfigPath = "camoxai.yaml"
	// DefaultEnvPath is loaded when present.
	DefaultEnvPath = ".env"
	// DefaultOutputDir receives the JSON artifacts.
	DefaultOutputDir = "camoxai_out"
)

func main() {
	var (
		configPath  string
		envPath     string
		imageDir    string
		gtDir       string
		fixDir      string
		detDir      string
		outputDir   string
		sensitivity float64
		bias        float64
		workers     int
		saveMasks   bool
	)
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Path to the YAML or JSON parameter file")
	flag.StringVar(&envPath, "env", DefaultEnvPath, "Path to a .env file with CAMOXAI_* overrides")
	flag.StringVar(&imageDir, "images", "", "Directory of input images (.jpg, .jpeg, .png, .bmp)")
	flag.StringVar(&gtDir, "gt", "", "Directory of binary confidence maps, matched by base name")
	flag.StringVar(&fixDir, "fix", "", "Directory of fixation maps, matched by base name")
	flag.StringVar(&detDir, "detections", "", "Directory of detector outputs (<name>.json)")
	flag.StringVar(&outputDir, "out", DefaultOutputDir, "Output directory for JSON artifacts, empty to skip")
	flag.Float64Var(&sensitivity, "sensitivity", 0, "Override the threshold sensitivity")
	flag.Float64Var(&bias, "bias", 0, "Override the threshold bias")
	flag.IntVar(&workers, "workers", 0, "Override the number of concurrent images")
	flag.BoolVar(&saveMasks, "save-masks", false, "Write <name>_mask.png binary masks next to the artifacts")
	flag.Parse()

	if imageDir == "" {
		log.Fatal("-images is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sensitivity":
			cfg.Threshold.Sensitivity = sensitivity
		case "bias":
			cfg.Threshold.Bias = bias
		case "workers":
			cfg.Batch.Workers = workers
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		log.Fatal(err)
	}

	p, err := pipeline.New(cfg.PipelineOptions(), logger)
	if err != nil {
		logger.Fatal(err)
	}

	files, err := util.LoadSampleSet(util.SampleDirs{
		Images:     imageDir,
		Confidence: gtDir,
		Fixation:   fixDir,
		Detections: detDir,
	})
	if err != nil {
		logger.Fatal(err)
	}

	var sink *report.DirSink
	var runSink report.Sink
	if outputDir != "" {
		if sink, err = report.NewDirSink(outputDir); err != nil {
			logger.Fatal(err)
		}
		runSink = sink
	}
	if saveMasks && sink == nil {
		logger.Fatal("-save-masks needs an output directory")
	}

	jobs := make([]runner.Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, runner.Job{
			Name: f.Name,
			Load: func(context.Context) (pipeline.Sample, error) {
				if saveMasks && f.Confidence != "" {
					if err := writeMask(outputDir, f, p.Threshold()); err != nil {
						return pipeline.Sample{}, err
					}
				}
				return imageio.LoadSample(f)
			},
		})
	}

	fmt.Printf("\n🚀 Camouflage Explanation Started\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("⚙️  Configuration:\n")
	fmt.Printf("   🖼️  Images: %d in %s\n", len(jobs), imageDir)
	fmt.Printf("   🎚️  Sensitivity: %.2f, bias: %.2f (threshold %.3f)\n",
		cfg.Threshold.Sensitivity, cfg.Threshold.Bias, p.Threshold())
	fmt.Printf("   📏 Grouping distance: %.0f px, IoU: %.2f\n",
		p.Options().Consolidation.DistanceThreshold, cfg.Consolidation.IoUThreshold)
	fmt.Printf("   👷 Workers: %d, per-image timeout: %v\n", cfg.Batch.Workers, cfg.Batch.PerImageTimeout)
	fmt.Printf("   💾 Output directory: %s\n", outputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(p, runner.Options{Workers: cfg.Batch.Workers, Timeout: cfg.Batch.PerImageTimeout}, runSink, logger)
	summary, runErr := r.Run(ctx, jobs)

	for _, res := range summary.Results {
		if res.Err != nil {
			fmt.Printf("\n❌ %s: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Printf("\n%s\n", res.Outcome.Message())
	}

	if sink != nil {
		if err := sink.WriteStats(summary.Stats); err != nil {
			logger.WithError(err).Error("write stats")
		}
	}

	fmt.Printf("\n📊 %d images, %d failed (run %s)\n", len(summary.Results), summary.Failed, summary.RunID)
	if runErr != nil {
		logger.WithError(runErr).Error("batch interrupted")
		os.Exit(1)
	}
}

// writeMask saves the binary mask of a sample's confidence map.
func writeMask(dir string, f util.SampleFiles, threshold float64) error {
	img, err := imageio.Open(f.Confidence)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
	return imageio.SaveMask(filepath.Join(dir, base+"_mask.png"), img, threshold)
}
