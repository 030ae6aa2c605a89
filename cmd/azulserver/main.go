// Command azulserver runs the Azul analysis REST API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/azulengine/internal/weights"
	"github.com/yourusername/azulengine/pkg/api"
	"github.com/yourusername/azulengine/pkg/engine"
)

const version = "0.1.0"

func main() {
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	weightsFile := flag.String("weights", "", "Path to JSON weight profile (empty = defaults)")
	cacheSize := flag.Uint("cache-size", 0, "Evaluation cache entries (0 = default)")
	fastWorkers := flag.Int("fast-workers", 100, "Max concurrent fast operations")
	slowWorkers := flag.Int("slow-workers", 4, "Max concurrent searches")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Azul Analysis Server v%s\n", version)
		os.Exit(0)
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	opts := engine.EngineOptions{
		CacheSize: uint32(*cacheSize),
		Store:     engine.NewMemoryStore(),
		Logger:    log,
	}
	if *weightsFile != "" {
		profile, err := weights.LoadJSON(*weightsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *weightsFile).Msg("loading weight profile")
		}
		opts.Weights = profile
		log.Info().Str("profile", profile.Name).Msg("loaded weight profile")
	}

	eng, err := engine.NewEngine(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	config := api.ServerConfig{
		Host:           *host,
		Port:           *port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: *fastWorkers,
		MaxSlowWorkers: *slowWorkers,
	}

	server := api.NewServer(eng, config, version, log)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
