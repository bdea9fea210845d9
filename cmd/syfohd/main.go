package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syfoh/internal/api"
	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/config"
	"github.com/danmuck/syfoh/internal/observability"
	"github.com/danmuck/syfoh/internal/transport"
)

func main() {
	configPath := flag.String("config", "cmd/syfohd/config.toml", "daemon config file")
	flag.Parse()

	observability.InitLogger("syfohd")
	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load daemon config")
	}
	log.Info().Str("path", *configPath).Msg("loaded daemon config")

	c, err := catalog.Load(cfg.Catalog.Names, cfg.Catalog.Properties)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	parser, err := command.NewParser(c, config.ParserOptions(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid frame defaults")
	}

	var sink transport.Sink
	if opts, ok := config.SerialOptions(cfg); ok {
		serial, err := transport.Open(transport.ModeSerial, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open serial port")
		}
		defer serial.Close()
		sink = serial
	}

	server := api.New(cfg.Name, cfg.Addr, cfg.CorsOrigins, parser, sink)
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("syfohd stopped")
	}
}
