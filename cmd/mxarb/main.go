package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mxarb/internal/infrastructure/config"
	"mxarb/internal/infrastructure/logger"
	"mxarb/internal/infrastructure/svc"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mxarb",
	Short: "MEXC spot/futures spread engine",
	Long: `mxarb streams best bid/ask from MEXC spot and perpetual futures,
computes entry and exit spreads per coin and pushes them to websocket
subscribers on /ws.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.toml", "path to config.toml")
}

func main() {
	logger.Setup("info")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env failed")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("load config failed")
		return err
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("init failed")
		return err
	}
	defer sc.Close()

	log.Info().
		Str("config", configPath).
		Str("addr", cfg.App.Addr).
		Int("spot_watch", len(cfg.Symbols.Spot)).
		Int("futures_watch", len(cfg.Symbols.Futures)).
		Msg("mxarb started")

	if err := sc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("mxarb exited")
		return err
	}
	log.Info().Msg("mxarb stopped")
	return nil
}
