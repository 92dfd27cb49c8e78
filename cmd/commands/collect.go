package commands

// Fetches the current release download counts, appends a history entry to
// stats.json and refreshes the shields.io endpoint files.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haya14busa/github-release-stats/internal/clients_api/github"
	"github.com/haya14busa/github-release-stats/internal/features/shields"
	storage "github.com/haya14busa/github-release-stats/internal/infra/fs"
	logging "github.com/haya14busa/github-release-stats/internal/infra/log"
	"github.com/haya14busa/github-release-stats/internal/stats"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCollectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collect <owner/repo>",
		Short: "Append a download snapshot of all releases to stats.json",
		Args:  ownerRepoArg,
		RunE:  a.runCollect,
	}
}

func (a *app) runCollect(cmd *cobra.Command, args []string) error {
	owner, repo, err := splitRepo(args[0])
	if err != nil {
		return err
	}
	if a.cfg.GitHub.Token == "" {
		return errors.New("GITHUB_API_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	st, err := a.collect(ctx, owner, repo)
	if err != nil {
		logging.LogError("Collect failed", zap.String("repo", owner+"/"+repo), zap.Error(err))
		return err
	}

	if err := a.writeShields(owner, repo, st.Summary); err != nil {
		return err
	}

	logging.LogSuccess("Stats collected",
		zap.String("repo", owner+"/"+repo),
		zap.Int("history", len(st.History)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Stats file has been updated: %s\n", a.store.StatsPath(owner, repo))
	return nil
}

func (a *app) collect(ctx context.Context, owner, repo string) (*stats.ReleaseStats, error) {
	st, err := a.store.LoadStats(owner, repo)
	switch {
	case errors.Is(err, storage.ErrNoData):
		st = stats.NewReleaseStats(owner, repo)
	case err != nil:
		return nil, err
	}
	if st.Repo == nil {
		st.Repo = &stats.Repository{Owner: owner, Repo: repo}
	}

	gh := a.cfg.GitHub
	client, err := github.NewClient(github.Options{
		BaseURL:         gh.BaseURL,
		Token:           gh.Token,
		Timeout:         time.Duration(gh.RequestTimeout) * time.Second,
		MaxRetries:      gh.MaxRetries,
		PerPage:         gh.PerPage,
		MaxResponseSize: gh.MaxResponseSize,
	})
	if err != nil {
		return nil, err
	}
	releases, err := client.ListAllReleases(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}

	st.History = append(st.History, stats.ConvertReleases(a.now().Unix(), releases))
	stats.UpdateSummary(st)

	if err := a.store.SaveStats(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (a *app) writeShields(owner, repo string, summary *stats.Summary) error {
	for _, e := range shields.Endpoints(summary) {
		data, err := e.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", e.FileName, err)
		}
		if err := storage.WriteFileAtomic(a.store.ShieldPath(owner, repo, e.FileName), data); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.FileName, err)
		}
	}
	return nil
}
