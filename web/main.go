package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/web/server"
)

func main() {
	config := server.DefaultConfig()
	flag.IntVar(&config.Port, "port", config.Port, "Port to serve on")
	flag.Float64Var(&config.RendersPerSec, "rate", config.RendersPerSec, "Render requests per second (0 = unlimited)")
	flag.IntVar(&config.RenderBurst, "burst", config.RenderBurst, "Render requests allowed in a burst")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)

	webServer := server.NewServer(config)
	logger.Info("aperture preview server", "url", "http://localhost:"+strconv.Itoa(config.Port)+"/api/aperture")

	if err := webServer.Start(); err != nil {
		logger.Error("error starting server", "err", err)
		os.Exit(1)
	}
}
