package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apptrending "gsoc-backend/application/trending"
	"gsoc-backend/domain/trending"
	"gsoc-backend/infrastructure/config"
	dynamorepo "gsoc-backend/infrastructure/persistence/dynamodb"
	"gsoc-backend/infrastructure/snapshots"
	"gsoc-backend/pkg/clock"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// jobConfig is the optional YAML job file. Flags override file values.
type jobConfig struct {
	Ranges    []string `yaml:"ranges"`
	OutputDir string   `yaml:"output_dir"`
	Limit     int      `yaml:"limit"`
}

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		outputDir  string
		limit      int
		rangeNames []string
		schedule   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate trending snapshots for every entity and range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			job := jobConfig{
				OutputDir: cfg.TrendingDir,
				Limit:     cfg.TrendingLimit,
			}
			if configPath != "" {
				if err := loadJobConfig(configPath, &job); err != nil {
					return err
				}
			}
			if outputDir != "" {
				job.OutputDir = outputDir
			}
			if limit > 0 {
				job.Limit = limit
			}
			if len(rangeNames) > 0 {
				job.Ranges = rangeNames
			}

			ranges, err := parseRanges(job.Ranges)
			if err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			ctx := cmd.Context()
			generator, err := buildGenerator(ctx, cfg, job, ranges, logger)
			if err != nil {
				return err
			}

			if schedule == "" {
				return generator.Run(ctx)
			}
			return runScheduled(ctx, generator, schedule, logger)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML job config file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "snapshot output directory (overrides TRENDING_DIR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max items per snapshot (overrides TRENDING_LIMIT)")
	cmd.Flags().StringSliceVar(&rangeNames, "ranges", nil, "ranges to generate (daily,weekly,monthly,yearly)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression; keep running and generate on schedule")

	return cmd
}

func loadJobConfig(path string, job *jobConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read job config: %w", err)
	}
	if err := yaml.Unmarshal(data, job); err != nil {
		return fmt.Errorf("parse job config %s: %w", path, err)
	}
	return nil
}

func parseRanges(names []string) ([]trending.Range, error) {
	if len(names) == 0 {
		return trending.Ranges(), nil
	}
	ranges := make([]trending.Range, 0, len(names))
	for _, name := range names {
		rng, ok := trending.ParseRange(name)
		if !ok {
			return nil, fmt.Errorf("unknown range %q", name)
		}
		ranges = append(ranges, rng)
	}
	return ranges, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config, job jobConfig, ranges []trending.Range, logger *zap.Logger) (*apptrending.Generator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg)

	clk := clock.System()
	orgRepo := dynamorepo.NewOrganizationRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)

	return apptrending.NewGenerator(
		snapshots.NewStore(job.OutputDir),
		apptrending.DefaultSources(orgRepo, clk),
		ranges,
		job.Limit,
		clk,
		logger,
	), nil
}

// runScheduled keeps the process alive and runs the batch on the cron
// schedule. Runs execute serially on the scheduler goroutine, so the job
// never overlaps with itself.
func runScheduled(ctx context.Context, generator *apptrending.Generator, schedule string, logger *zap.Logger) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := generator.Run(ctx); err != nil {
			logger.Error("scheduled trending run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	c.Start()
	defer c.Stop()

	logger.Info("trending scheduler started", zap.String("schedule", schedule))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("trending scheduler stopped")
	return nil
}
