package commands

// Renders the light and dark charts of one repository from its stats.json.

import (
	"fmt"

	"github.com/haya14busa/github-release-stats/internal/features/charts"
	"github.com/haya14busa/github-release-stats/internal/infra/config"
	storage "github.com/haya14busa/github-release-stats/internal/infra/fs"
	logging "github.com/haya14busa/github-release-stats/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chart <owner/repo>",
		Short: "Render light and dark download charts (default command)",
		Args:  ownerRepoArg,
		RunE:  a.runChart,
	}
}

func (a *app) runChart(cmd *cobra.Command, args []string) error {
	owner, repo, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	samples, err := a.store.LoadSamples(owner, repo)
	if err != nil {
		logging.LogError("Error loading data", zap.String("repo", owner+"/"+repo), zap.Error(err))
		if a.cfg.Chart.OnLoadError == config.OnLoadErrorFail {
			return fmt.Errorf("failed to load data: %w", err)
		}
		samples = nil
	}
	logging.LogInfo("Samples loaded", zap.String("repo", owner+"/"+repo), zap.Int("samples", len(samples)))

	layout := a.layout()
	out := cmd.OutOrStdout()
	for _, theme := range charts.Themes {
		chart := charts.Build(samples, owner, repo, theme, layout)

		path := a.store.ChartPath(owner, repo, theme, "svg")
		if err := storage.WriteFileAtomic(path, chart.SVG()); err != nil {
			return fmt.Errorf("failed to write %s chart: %w", theme, err)
		}
		fmt.Fprintf(out, "%s mode SVG file has been generated: %s\n", theme.Label(), path)

		if !a.cfg.Chart.PNG {
			continue
		}
		png, err := chart.PNG()
		if err != nil {
			return fmt.Errorf("failed to render %s png: %w", theme, err)
		}
		path = a.store.ChartPath(owner, repo, theme, "png")
		if err := storage.WriteFileAtomic(path, png); err != nil {
			return fmt.Errorf("failed to write %s png: %w", theme, err)
		}
		fmt.Fprintf(out, "%s mode PNG file has been generated: %s\n", theme.Label(), path)
	}
	return nil
}
