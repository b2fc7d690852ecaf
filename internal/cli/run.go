package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/transit-board/internal/api"
	"github.com/abelzeko/transit-board/internal/integration"
	"github.com/abelzeko/transit-board/internal/operator"
	"github.com/abelzeko/transit-board/internal/usecases"
	"github.com/spf13/cobra"
)

var noPrompt bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run both pipelines on their schedules until interrupted",
	Long: `Run refreshes the bus schedule on the bus schedule (default every 60s) and
the line report plus corridor view on the disruption schedule (default every
180s). After each disruption cycle it waits for an operator message, then
publishes the changed tables.

Schedules accept cron expressions or descriptors such as "@every 90s".`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "do not wait for operator input on the terminal")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sources []operator.Source
	if cfg.Operator.Prompt && !noPrompt {
		sources = append(sources, operator.NewTerminalPrompt(os.Stdin, os.Stdout))
	}
	if cfg.Operator.Telegram.Token != "" {
		if a.repo == nil {
			return fmt.Errorf("telegram bot requires storage to be enabled")
		}
		bot, err := api.NewTelegramBot(cfg.Operator.Telegram.Token, a.repo, cfg.Operator.Telegram.AllowedChatIDs)
		if err != nil {
			return err
		}
		go bot.Start(ctx)
		sources = append(sources, bot)
	}

	operatorCfg := usecases.OperatorConfig{Wait: cfg.Operator.Wait, File: cfg.Operator.File}
	if len(sources) > 0 {
		operatorCfg.Source = operator.NewCombined(sources...)
	}

	var publisher usecases.Publisher
	if cfg.Publish.Enabled {
		publisher = integration.NewGitPublisher(cfg.Publish.RepoDir, cfg.Publish.Push)
	}

	orchestrator, err := usecases.NewOrchestrator(a.bus, a.disruption, cfg.Bus.Schedule, cfg.Disruption.Schedule,
		operatorCfg, publisher)
	if err != nil {
		return err
	}

	log.Printf("Bus schedule %q, disruption schedule %q", cfg.Bus.Schedule, cfg.Disruption.Schedule)
	return orchestrator.Run(ctx)
}
