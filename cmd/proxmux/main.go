package main

import (
	"context"

	_ "github.com/jimmicro/version"
	"github.com/jimyag/proxmux/internal/proxmux"
	"github.com/jimyag/proxmux/internal/proxmux/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	server, err := proxmux.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create proxmux")
	}
	if err := server.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run proxmux")
	}
}
