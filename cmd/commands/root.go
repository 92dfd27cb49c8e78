package commands

// Root command: `release-stats owner/repo` renders the charts.
// Subcommands: chart (same as root), collect, publish.

import (
	"fmt"
	"strings"
	"time"

	"github.com/haya14busa/github-release-stats/internal/features/charts"
	"github.com/haya14busa/github-release-stats/internal/features/publish"
	"github.com/haya14busa/github-release-stats/internal/infra/config"
	storage "github.com/haya14busa/github-release-stats/internal/infra/fs"
	logging "github.com/haya14busa/github-release-stats/internal/infra/log"

	"github.com/spf13/cobra"
)

// chartPublisher is satisfied by *publish.Publisher.
type chartPublisher interface {
	PublishChart(fileName string, png []byte, caption string) error
}

// app is the state shared by every command of one invocation.
type app struct {
	cfg   *config.Config
	store *storage.Store

	now          func() time.Time
	newPublisher func(botToken, chatID string) (chartPublisher, error)
}

func newApp() *app {
	return &app{
		now: time.Now,
		newPublisher: func(botToken, chatID string) (chartPublisher, error) {
			return publish.NewTelegramPublisher(botToken, chatID)
		},
	}
}

func Execute() error {
	return newRootCmd(newApp()).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "release-stats <owner/repo>",
		Short: "GitHub release download stats: collect history and render charts",
		Long: `release-stats keeps a download history of a repository's GitHub releases in
data/<owner>/<repo>/stats.json and renders it as light and dark SVG charts.`,
		Version:           "1.0.0",
		Args:              ownerRepoArg,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { logging.Sync() },
		RunE:              a.runChart,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newChartCmd(a))
	rootCmd.AddCommand(newCollectCmd(a))
	rootCmd.AddCommand(newPublishCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.InitWithConsole(cfg.App.LogDir, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.cfg = cfg
	a.store = storage.NewStore(cfg.App.DataDir)
	return nil
}

func ownerRepoArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <owner/repo>", cmd.CommandPath())
	}
	if _, _, err := splitRepo(args[0]); err != nil {
		return fmt.Errorf("%w; usage: %s <owner/repo>", err, cmd.CommandPath())
	}
	return nil
}

// splitRepo splits "owner/repo" into its two halves.
func splitRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || !validName(owner) || !validName(repo) {
		return "", "", fmt.Errorf("invalid repository %q, want owner/repo", s)
	}
	return owner, repo, nil
}

// validName rejects path segments that would leave <data_dir>/<owner>/<repo>.
func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func (a *app) layout() charts.Layout {
	c := a.cfg.Chart
	return charts.Layout{
		Width:        float64(c.Width),
		Height:       float64(c.Height),
		MarginTop:    float64(c.MarginTop),
		MarginRight:  float64(c.MarginRight),
		MarginBottom: float64(c.MarginBottom),
		MarginLeft:   float64(c.MarginLeft),
		TickMonths:   c.TickMonths,
	}
}
