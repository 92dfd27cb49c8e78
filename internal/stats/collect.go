package stats

import "time"

// ReleaseInfo is what the collector needs from one GitHub release.
type ReleaseInfo struct {
	ID      int64
	TagName string
	Assets  []AssetInfo
}

type AssetInfo struct {
	ID            int64
	Name          string
	DownloadCount int64
}

// NewReleaseStats returns an empty document for owner/repo.
func NewReleaseStats(owner, repo string) *ReleaseStats {
	return &ReleaseStats{Repo: &Repository{Owner: owner, Repo: repo}}
}

// ConvertReleases builds the history entry for releases observed at timestampSec.
func ConvertReleases(timestampSec int64, releases []ReleaseInfo) *History {
	h := &History{TimestampSeconds: ptr(timestampSec)}
	var total int64
	for _, r := range releases {
		rel := convertRelease(r)
		h.Release = append(h.Release, rel)
		total += int64(rel.TotalDownloadCount)
	}
	h.TotalDownloadCount = Int64(total)
	return h
}

func convertRelease(r ReleaseInfo) *Release {
	rel := &Release{ID: Int64(r.ID), TagName: r.TagName}
	var total int64
	for _, a := range r.Assets {
		rel.Assets = append(rel.Assets, &Asset{
			ID:            Int64(a.ID),
			Name:          a.Name,
			DownloadCount: Int64(a.DownloadCount),
		})
		total += a.DownloadCount
	}
	rel.TotalDownloadCount = Int64(total)
	return rel
}

// Summary windows. The extra hour absorbs scheduler jitter between runs.
const (
	timeBuffer  = time.Hour
	timeDaily   = 24*time.Hour + timeBuffer
	timeWeekly  = 7*24*time.Hour + timeBuffer
	timeMonthly = 30*24*time.Hour + timeBuffer
)

// UpdateSummary recomputes s.Summary from the history. The daily, weekly and
// monthly figures are the growth since the oldest entry still inside each
// window. A document without history is left untouched.
func UpdateSummary(s *ReleaseStats) {
	latest := s.Latest()
	if latest == nil {
		return
	}
	latestTime := time.Unix(latest.Timestamp(), 0)

	dailyStart, weeklyStart, monthlyStart := latest, latest, latest
	for i := len(s.History) - 2; i >= 0; i-- {
		h := s.History[i]
		age := latestTime.Sub(time.Unix(h.Timestamp(), 0))
		if age >= timeMonthly {
			break
		}
		if age < timeDaily {
			dailyStart = h
		}
		if age < timeWeekly {
			weeklyStart = h
		}
		monthlyStart = h
	}

	s.Summary = &Summary{
		LatestTotalDownloads:  Int64(latest.Total()),
		DailyTotalDownloads:   Int64(latest.Total() - dailyStart.Total()),
		WeeklyTotalDownloads:  Int64(latest.Total() - weeklyStart.Total()),
		MonthlyTotalDownloads: Int64(latest.Total() - monthlyStart.Total()),
	}
}
