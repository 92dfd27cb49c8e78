package commands

// Sends the PNG chart of one repository to the configured Telegram chat.

import (
	"errors"
	"fmt"
	"time"

	"github.com/haya14busa/github-release-stats/internal/features/charts"
	"github.com/haya14busa/github-release-stats/internal/features/publish"
	storage "github.com/haya14busa/github-release-stats/internal/infra/fs"
	logging "github.com/haya14busa/github-release-stats/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <owner/repo>",
		Short: "Send the download chart to a Telegram chat",
		Args:  ownerRepoArg,
		RunE:  a.runPublish,
	}
}

func (a *app) runPublish(cmd *cobra.Command, args []string) error {
	owner, repo, err := splitRepo(args[0])
	if err != nil {
		return err
	}
	tg := a.cfg.Telegram
	if tg.BotToken == "" || tg.ChatID == "" {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}

	start := time.Now()
	st, err := a.store.LoadStats(owner, repo)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	samples, err := storage.Samples(st)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	theme := charts.ParseTheme(tg.Theme)
	png, err := charts.Build(samples, owner, repo, theme, a.layout()).PNG()
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	var latest int64
	if h := st.Latest(); h != nil {
		latest = h.Total()
	}

	publisher, err := a.newPublisher(tg.BotToken, tg.ChatID)
	if err != nil {
		return err
	}
	fileName := fmt.Sprintf("release_stats_chart_%s.png", theme)
	if err := publisher.PublishChart(fileName, png, publish.Caption(owner, repo, latest)); err != nil {
		logging.LogError("Publish failed", zap.String("repo", owner+"/"+repo), zap.Error(err))
		return err
	}

	logging.LogSuccess("Chart published",
		zap.String("repo", owner+"/"+repo),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Chart has been sent to chat %s\n", tg.ChatID)
	return nil
}
