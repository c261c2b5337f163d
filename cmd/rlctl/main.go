package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/grpc/experimentserver"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/render"
)

// cli holds the state shared by every subcommand.
type cli struct {
	configPath string
	server     string
	logLevel   string
	noColor    bool
	jsonOut    bool
	timeout    time.Duration

	cfg     *config.Config
	backend backend
	printer *render.Printer
	closers []func() error
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "rlctl",
		Short:         "Run value iteration, Q-learning and Pacman experiments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to config file")
	flags.StringVar(&c.server, "server", "", "Address of an rl_server to run experiments on (empty runs them in-process)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&c.jsonOut, "json", false, "Print raw JSON results")
	flags.DurationVar(&c.timeout, "timeout", 0, "Abort the experiment after this long (0 waits forever)")

	root.AddCommand(
		c.solveCommand(),
		c.trainCommand(),
		c.pacmanCommand(),
		c.compareCommand(),
		c.listCommand(),
		c.layoutCommand(),
	)
	return root
}

func (c *cli) setup() error {
	level, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.Init(c.configPath); err != nil {
		return err
	}
	c.cfg = config.Get()
	c.printer = render.NewPrinter(c.cfg.Render.Color && !c.noColor, c.cfg.Render.Precision)

	if c.server != "" {
		conn, err := grpc.NewClient(c.server, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", c.server, err)
		}
		c.closers = append(c.closers, conn.Close)
		c.backend = remote{client: experimentserver.NewClient(conn)}
		return nil
	}

	bus := events.NewEventBus(events.WithLogger(log.Logger))
	bus.Subscribe(subscribers.NewLoggerSubscriber("rlctl", log.Logger, zerolog.DebugLevel))

	opts := experiment.Options{MaxConcurrent: 1, Publisher: bus, Logger: log.Logger}
	if c.cfg.Reports.Type == string(experience.PersistenceTypeFile) {
		layer, err := experience.NewPersistenceLayer(experience.PersistenceConfig{
			Type:        experience.PersistenceTypeFile,
			BaseDir:     c.cfg.Reports.BaseDir,
			MaxFileSize: c.cfg.Reports.MaxFileSize,
		}, log.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, layer.Close)
		opts.Reports = experiment.NewPersistenceSink(layer)
	}
	c.backend = local{runner: experiment.NewRunner(opts)}
	return nil
}

func (c *cli) close() error {
	var first error
	for _, fn := range c.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// context returns the context experiments run under: cancelled by SIGINT or
// SIGTERM, and by --timeout when set.
func (c *cli) context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if c.timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
