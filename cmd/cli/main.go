package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contesthub/internal/aggregator"
	"github.com/contesthub/internal/config"
	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/schedule"
	"github.com/contesthub/internal/source"
	"github.com/contesthub/internal/source/kontests"
	"github.com/contesthub/pkg/logger"
	"github.com/contesthub/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contesthub",
		Short: "Competitive programming contest aggregator",
		Long: `Fetches upcoming contests from the supported platforms, merges
them with projected recurring contests and prints the result.`,
		PersistentPreRunE: initializeApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	rootCmd.AddCommand(contestsCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return nil
}

func contestsCmd() *cobra.Command {
	var platformFilter string
	var includeProjections bool

	cmd := &cobra.Command{
		Use:   "contests",
		Short: "Fetch and list upcoming contests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			limiter := ratelimit.NewPlatformLimiter(models.NormalizePlatformKeys(cfg.Fetcher.Platforms))

			sourceManager := source.NewManager()
			for _, src := range kontests.NewMultiple(cfg.Fetcher, limiter, log) {
				sourceManager.Register(src)
			}

			projector := schedule.NewProjector(schedule.DefaultTable())
			agg := aggregator.NewService(sourceManager, projector, log)

			contests, err := agg.Aggregate(ctx)
			if err != nil {
				return fmt.Errorf("aggregation failed: %w", err)
			}

			shown := 0
			for _, c := range contests {
				if platformFilter != "" && c.Platform != models.NormalizePlatform(platformFilter) {
					continue
				}
				if c.IsRecurringProjection && !includeProjections {
					continue
				}
				printContest(c)
				shown++
			}

			fmt.Printf("\n%d contests\n", shown)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformFilter, "platform", "", "only show contests from this platform")
	cmd.Flags().BoolVar(&includeProjections, "projections", true, "include projected recurring contests")
	return cmd
}

func printContest(c models.Contest) {
	marker := " "
	if c.IsRecurringProjection {
		marker = "~"
	}
	fmt.Printf("%s [%-11s] %-50s %s  (%s, %s)\n",
		marker,
		c.Platform,
		truncate(c.Name, 50),
		c.StartTime.Local().Format("Mon Jan 2 15:04"),
		formatDuration(c.DurationSeconds),
		c.Status,
	)
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the static recurring contest schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, platform := range schedule.DefaultTable() {
				fmt.Printf("%s (%s)\n", platform.DisplayName, platform.ContestListURL)
				for _, rc := range platform.RecurringContests {
					fmt.Printf("    %-28s %-14s %-12s %s\n",
						rc.Name, rc.DayOfWeek, rc.TimeOfDay, rc.Frequency)
				}
			}
			return nil
		},
	}
}

// truncate shortens s to at most n runes; contest names are not
// guaranteed to be ASCII
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d >= 24*time.Hour {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
