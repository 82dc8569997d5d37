package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/frc4915/scoutshift/internal/assign"
	"github.com/frc4915/scoutshift/internal/catalog"
	"github.com/frc4915/scoutshift/internal/config"
	"github.com/frc4915/scoutshift/internal/frcapi"
	"github.com/frc4915/scoutshift/internal/report"
	"github.com/frc4915/scoutshift/internal/validator"
)

const defaultConfigFile = "config.yaml"

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).With().Timestamp().Logger()
}

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	log := newLogger()

	rootCmd := &cobra.Command{
		Use:   "scoutshift",
		Short: "FRC scouting-duty schedule generator",
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	fetchCmd := &cobra.Command{
		Use:          "fetch",
		Short:        "Fetch the event schedule from the FIRST Events API and cache it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), log, configPath)
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate scouting schedules",
	}

	var outputFile string
	var useCache bool
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a scouting schedule workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), log, configPath, outputFile, useCache)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().BoolVar(&useCache, "cached", false, "Use the cached schedule instead of fetching")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Validate a schedule workbook against config rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, fetchCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# scoutshift Event Configuration
# ==============================
# This file defines the parameters for generating a scouting-duty schedule.

# Event identifies the competition on the FIRST Events API.
event:
  season: 2024
  code: BCVI
  tournament_level: practice   # practice or qualification

# API credentials are NOT stored here. Set FRC_API_USERNAME and
# FRC_API_PASSWORD in the environment or in a .env file next to this
# config.
api:
  base_url: https://frc-api.firstinspires.org/v3.0

# Where the raw schedule response is cached. 'schedule generate --cached'
# reads this file instead of hitting the API.
cache_file: schedule_cache.json

# Ordered roster of scouting members. Order matters: the engine rotates
# through this list when spreading assignments.
members:
  - Alex Carter
  - Jordan Smith
  - Taylor Johnson
  - Morgan Davis
  - Casey Brown
  - Riley Wilson
  - Jamie Anderson
  - Drew Thompson

# Teams that are never assigned a scout (e.g. our own team).
excluded_teams: [4915]

# Coverage floors. Both are best-effort: when the schedule cannot satisfy
# a floor the shortfall is reported as a warning, not an error.
rules:
  min_members_per_team: 2   # distinct members per eligible team
  min_teams_per_member: 4   # distinct teams per member

# Break detection for the rendered schedule.
breaks:
  lunch_gap_minutes: 60   # same-day gap at least this long => Lunch Break
  short_gap_minutes: 15   # member-sheet gaps longer than this are emphasized
`

// loadSchedule returns the raw schedule, either from the cache or a fresh
// fetch. A fresh fetch always refreshes the cache.
func loadSchedule(ctx context.Context, log zerolog.Logger, cfg *config.Config, useCache bool) (*frcapi.ScheduleResponse, error) {
	if useCache {
		resp, err := frcapi.LoadCache(cfg.CacheFile)
		if err == nil {
			log.Info().Str("cache", cfg.CacheFile).Msg("using cached schedule")
			return resp, nil
		}
		log.Warn().Err(err).Msg("no usable cache, fetching from API")
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}

	client := frcapi.NewClient(cfg.API.BaseURL, creds)
	log.Info().
		Int("season", cfg.Event.Season).
		Str("event", cfg.Event.Code).
		Str("level", cfg.Event.TournamentLevel).
		Msg("fetching schedule")
	resp, err := client.FetchSchedule(ctx, cfg.Event.Season, cfg.Event.Code, cfg.Event.TournamentLevel)
	if err != nil {
		return nil, err
	}

	if err := frcapi.SaveCache(cfg.CacheFile, resp); err != nil {
		return nil, err
	}
	log.Info().Str("cache", cfg.CacheFile).Msg("cache refreshed")
	return resp, nil
}

func runFetch(ctx context.Context, log zerolog.Logger, configPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resp, err := loadSchedule(ctx, log, cfg, false)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Fetched %d matches to %s\n", len(resp.Schedule), cfg.CacheFile)
	return nil
}

func runGenerate(ctx context.Context, log zerolog.Logger, configPath, outputPath string, useCache bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resp, err := loadSchedule(ctx, log, cfg, useCache)
	if err != nil {
		return err
	}

	matches, err := catalog.Build(resp, cfg.Event.TournamentLevel)
	if err != nil {
		return fmt.Errorf("building match catalog: %w", err)
	}
	if len(matches) == 0 {
		log.Warn().Str("level", cfg.Event.TournamentLevel).Msg("schedule has no matches at this level")
	}

	excluded := cfg.Excluded()
	eligible := catalog.EligibleTeams(matches, excluded)
	breaks := catalog.Breaks(matches, cfg.LunchGap())

	log.Info().
		Int("matches", len(matches)).
		Int("teams", len(eligible)).
		Int("members", len(cfg.Members)).
		Msg("assigning scouting duties")

	result := assign.Run(matches, eligible, cfg.Members, assign.Options{
		MinMembersPerTeam: cfg.Rules.MinMembersPerTeam,
		MinTeamsPerMember: cfg.Rules.MinTeamsPerMember,
		Excluded:          excluded,
	})

	for _, d := range result.Diagnostics {
		log.Warn().Msg(d)
	}

	fmt.Println("\nPer Member Duties:")
	fmt.Printf("  %-20s %6s %6s\n", "Member", "Teams", "Duties")
	for _, member := range cfg.Members {
		fmt.Printf("  %-20s %6d %6d\n", member, len(result.Teams(member)), len(result.Duties(member)))
	}

	if len(result.Shortfalls) > 0 {
		fmt.Printf("\nCoverage shortfalls (%d):\n", len(result.Shortfalls))
		for _, s := range result.Shortfalls {
			fmt.Printf("  ⚠ %s\n", s)
		}
	} else {
		fmt.Println("\n✓ All coverage floors met")
	}

	f, err := report.Generate(cfg, matches, breaks, result)
	if err != nil {
		return fmt.Errorf("generating workbook: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)
	return nil
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Invariant violation: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Coverage shortfall: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d invariant violations, %d coverage shortfalls\n", errors, warnings)

	if errors > 0 {
		return fmt.Errorf("%d invariant violations found", errors)
	}
	return nil
}
