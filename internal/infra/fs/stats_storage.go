package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haya14busa/github-release-stats/internal/features/charts"
	"github.com/haya14busa/github-release-stats/internal/stats"
)

const (
	statsFileName = "stats.json"
	shieldsDir    = "shieldsio"
)

var (
	// ErrNoData means stats.json does not exist yet.
	ErrNoData = errors.New("no stats data")
	// ErrMalformed means stats.json exists but does not hold a usable history.
	ErrMalformed = errors.New("malformed stats data")
)

// Store reads and writes the files of every tracked repository under baseDir:
//
//	<baseDir>/<owner>/<repo>/stats.json
//	<baseDir>/<owner>/<repo>/release_stats_chart_<theme>.svg
//	<baseDir>/<owner>/<repo>/shieldsio/<window>.json
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	if baseDir == "" {
		baseDir = "data"
	}
	return &Store{baseDir: baseDir}
}

func (s *Store) RepoDir(owner, repo string) string {
	return filepath.Join(s.baseDir, owner, repo)
}

func (s *Store) StatsPath(owner, repo string) string {
	return filepath.Join(s.RepoDir(owner, repo), statsFileName)
}

// ChartPath is where the chart of theme is written, ext without the dot.
func (s *Store) ChartPath(owner, repo string, theme charts.Theme, ext string) string {
	return filepath.Join(s.RepoDir(owner, repo), fmt.Sprintf("release_stats_chart_%s.%s", theme, ext))
}

func (s *Store) ShieldPath(owner, repo, fileName string) string {
	return filepath.Join(s.RepoDir(owner, repo), shieldsDir, fileName)
}

// LoadStats reads stats.json. A missing file is ErrNoData.
func (s *Store) LoadStats(owner, repo string) (*stats.ReleaseStats, error) {
	path := s.StatsPath(owner, repo)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var st stats.ReleaseStats
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", path, ErrMalformed, err)
	}
	return &st, nil
}

// LoadSamples returns the download history of owner/repo in file order.
// An existing file with an empty history yields no samples and no error;
// every failure to produce the history is reported as an error.
func (s *Store) LoadSamples(owner, repo string) ([]charts.Sample, error) {
	st, err := s.LoadStats(owner, repo)
	if err != nil {
		return nil, err
	}
	return Samples(st)
}

// Samples converts the history of st into chart samples.
func Samples(st *stats.ReleaseStats) ([]charts.Sample, error) {
	samples := make([]charts.Sample, 0, len(st.History))
	for i, h := range st.History {
		if h == nil || h.TimestampSeconds == nil {
			return nil, fmt.Errorf("history[%d]: missing timestampSeconds: %w", i, ErrMalformed)
		}
		if h.Total() < 0 {
			return nil, fmt.Errorf("history[%d]: negative totalDownloadCount: %w", i, ErrMalformed)
		}
		samples = append(samples, charts.Sample{
			Time:      time.Unix(h.Timestamp(), 0).UTC(),
			Downloads: h.Total(),
		})
	}
	return samples, nil
}

// SaveStats writes st as indented JSON.
func (s *Store) SaveStats(st *stats.ReleaseStats) error {
	if st.Repo == nil || st.Repo.Owner == "" || st.Repo.Repo == "" {
		return fmt.Errorf("stats has no repository")
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return WriteFileAtomic(s.StatsPath(st.Repo.Owner, st.Repo.Repo), data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file to %s: %w", path, err)
	}
	return nil
}
