// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the osm2csv command.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wneessen/osm2csv/internal/config"
	"github.com/wneessen/osm2csv/internal/logger"
	"github.com/wneessen/osm2csv/internal/service"
)

const version = "1.0"

type options struct {
	input  string
	output string
	config string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "osm2csv -i <input.osm> -o <output.csv>",
		Short: "Convert OSM museum nodes into a geocoded CSV file",
		Long: `Streams an OpenStreetMap XML extract, reverse geocodes every node via
Nominatim and writes one CSV row per node.

Examples:
  osm2csv -i museums.osm -o museums.csv
  OSM2CSV_ADDRESS_POLICY=strict osm2csv -i museums.osm -o museums.csv`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "path to the OSM XML input file")
	flags.StringVarP(&opts.output, "output", "o", "", "path to the CSV output file")
	flags.StringVarP(&opts.config, "config", "c", "", "path to the config file")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	log := logger.New(slog.LevelError)

	conf, err := loadConfig(opts.config)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		return err
	}
	log = logger.New(conf.LogLevel)

	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize osm2csv service", logger.Err(err))
		return err
	}

	log.Debug("starting conversion", slog.String("version", version), slog.String("input", opts.input),
		slog.String("output", opts.output))
	result, err := serv.Run(cmd.Context(), opts.input, opts.output)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", result.Rows, result.Output)
	return err
}

// loadConfig reads the config file given on the command line, then the one in
// the default location, then falls back to defaults and environment.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "osm2csv", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
