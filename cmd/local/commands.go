package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/baderkha/dbporter/pkg/migrate"
	"github.com/baderkha/dbporter/pkg/migrate/config"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:   "dbporter",
		Short: "Ports tables from csv files and source databases into one destination",
		Long: `Ports every table listed in a job file into the destination database,
running the configured sql scripts around each table. A failed run leaves a
checkpoint so the next run without --refresh only redoes what is left.`,
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a job",
		RunE:  runJob,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Decode and validate a job file without connecting to anything",
		RunE:  validateJob,
	}
)

// Execute : entry point for the command tree
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("job", "job.json", "path to the job file")
	rootCmd.PersistentFlags().String("log-level", "info", "zerolog level (debug, info, warn, error)")
	runCmd.Flags().Bool("refresh", true, "ignore any checkpoint and port every table again")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)

	viper.SetEnvPrefix("DBPORTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	_ = viper.BindPFlags(runCmd.Flags())
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("bad --log-level : %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func runJob(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	startTime := time.Now()
	cfg, err := config.Read(afero.NewOsFs(), viper.GetString("job"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	porter, err := migrate.NewPorter(ctx, cfg, migrate.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if err := porter.Close(); err != nil {
			log.Warn().Err(err).Msg("closing connections")
		}
	}()

	runErr := porter.Run(ctx, viper.GetBool("refresh"))
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("Time taken")
	return runErr
}

func validateJob(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read(afero.NewOsFs(), viper.GetString("job"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid : %d orders, %d sources\n", viper.GetString("job"), len(cfg.Orders), len(cfg.Sources))
	return nil
}
