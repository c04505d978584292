package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jaldrishti/internal/config"
	"jaldrishti/internal/logger"
	"jaldrishti/internal/server"
)

var serveFlags struct {
	addr           string
	tick           time.Duration
	statusMode     string
	brokers        []string
	topic          string
	suppressWindow time.Duration
	seed           uint64
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator and dashboard API",
	Long: `Seed a day of readings, generate new ones on every tick, raise threshold alerts and
serve everything over HTTP. Flags override environment variables.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.HTTP.Addr).
		Dur("tick_interval", cfg.Simulation.TickInterval).
		Str("status_mode", cfg.Simulation.StatusMode).
		Msg("starting jaldrishti")

	return srv.Run(ctx)
}

// applyServeFlags copies only the flags the user actually set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.HTTP.Addr = serveFlags.addr
	}
	if f.Changed("tick") {
		cfg.Simulation.TickInterval = serveFlags.tick
	}
	if f.Changed("status-mode") {
		cfg.Simulation.StatusMode = serveFlags.statusMode
	}
	if f.Changed("kafka-brokers") {
		cfg.Kafka.Brokers = serveFlags.brokers
	}
	if f.Changed("kafka-topic") {
		cfg.Kafka.Topic = serveFlags.topic
	}
	if f.Changed("suppress-window") {
		cfg.Simulation.AlertSuppressWindow = serveFlags.suppressWindow
	}
	if f.Changed("seed") {
		cfg.Simulation.RandSeed = serveFlags.seed
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	d := config.Default()
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", d.HTTP.Addr, "HTTP listen address")
	f.DurationVar(&serveFlags.tick, "tick", d.Simulation.TickInterval, "Simulator tick interval")
	f.StringVar(&serveFlags.statusMode, "status-mode", d.Simulation.StatusMode, "Reading status mode (threshold or random)")
	f.StringSliceVar(&serveFlags.brokers, "kafka-brokers", nil, "Kafka brokers for the event feed")
	f.StringVar(&serveFlags.topic, "kafka-topic", d.Kafka.Topic, "Kafka topic for the event feed")
	f.DurationVar(&serveFlags.suppressWindow, "suppress-window", 0, "Suppress repeat alerts for a location and substance within this window")
	f.Uint64Var(&serveFlags.seed, "seed", 0, "Random seed (0 picks one from the clock)")
}
