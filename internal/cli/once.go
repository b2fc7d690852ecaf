package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/abelzeko/transit-board/internal/integration"
	"github.com/abelzeko/transit-board/internal/usecases"
	"github.com/spf13/cobra"
)

var publishOnce bool

// onceCmd represents the once command
var onceCmd = &cobra.Command{
	Use:   "once [bus|lines|all]",
	Short: "Run a single cycle and exit",
	Long: `Once runs one bus cycle, one disruption cycle, or both, without waiting for
operator input. Tables are published only with --publish.

Example:
  transitboard once lines
  transitboard once all --publish`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"bus", "lines", "all"},
	RunE:      runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
	onceCmd.Flags().BoolVar(&publishOnce, "publish", false, "commit and push changed tables")
}

func runOnce(cmd *cobra.Command, args []string) error {
	which := "all"
	if len(args) == 1 {
		which = args[0]
	}
	if which != "bus" && which != "lines" && which != "all" {
		return fmt.Errorf("unknown pipeline %q, expected bus, lines or all", which)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var publisher usecases.Publisher
	if publishOnce {
		publisher = integration.NewGitPublisher(cfg.Publish.RepoDir, cfg.Publish.Push)
	}

	orchestrator, err := usecases.NewOrchestrator(a.bus, a.disruption, cfg.Bus.Schedule, cfg.Disruption.Schedule,
		usecases.OperatorConfig{File: cfg.Operator.File}, publisher)
	if err != nil {
		return err
	}

	if which == "bus" || which == "all" {
		orchestrator.RunBusCycle(ctx)
	}
	if which == "lines" || which == "all" {
		orchestrator.RunDisruptionCycle(ctx, false)
	}
	return ctx.Err()
}
