package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelzeko/transit-board/internal/api"
	"github.com/abelzeko/transit-board/internal/repository"
	"github.com/spf13/cobra"
)

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot against the latest snapshot",
	Long: `Bot answers /status, /corridor, /bus and /failed from the snapshot database
written by "transitboard run", and writes operator messages from allowed
chats straight to the operator file.

The token is read from operator.telegram.token or TRANSITBOARD_OPERATOR_TELEGRAM_TOKEN.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Operator.Telegram.Token == "" {
		return fmt.Errorf("operator.telegram.token is not set")
	}

	repo, err := repository.NewSQLiteSnapshotRepository(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()

	bot, err := api.NewTelegramBot(cfg.Operator.Telegram.Token, repo, cfg.Operator.Telegram.AllowedChatIDs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go bot.Start(ctx)

	for ctx.Err() == nil {
		text, ok, err := bot.AwaitMessage(ctx, time.Hour)
		if err != nil || !ok {
			continue
		}
		if err := repository.WriteText(cfg.Operator.File, text); err != nil {
			log.Printf("Warning: failed to write operator message: %v", err)
			continue
		}
		log.Printf("Wrote operator message to %s", cfg.Operator.File)
	}
	return nil
}
