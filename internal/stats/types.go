// Package stats holds the release stats document kept in stats.json and the
// collector logic that appends history to it.
//
// The document layout matches the protobuf JSON mapping used by earlier
// collectors, so int64 fields are written as decimal strings and accepted as
// either strings or numbers.
package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Int64 is an int64 that round-trips through protobuf JSON.
type Int64 int64

func (i Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(i), 10))), nil
}

func (i *Int64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// JSON numbers like 1.7e9 are still integers
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid int64 %q", string(data))
		}
		n = int64(f)
	}
	*i = Int64(n)
	return nil
}

type Repository struct {
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`
}

type Asset struct {
	ID            Int64  `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	DownloadCount Int64  `json:"downloadCount,omitempty"`
}

type Release struct {
	ID                 Int64    `json:"id,omitempty"`
	TagName            string   `json:"tagName,omitempty"`
	Assets             []*Asset `json:"assets,omitempty"`
	TotalDownloadCount Int64    `json:"totalDownloadCount,omitempty"`
}

// History is one snapshot of every release at a point in time.
// TimestampSeconds is a pointer so a missing timestamp can be told apart
// from the epoch; a zero download count is omitted by protobuf JSON and
// therefore optional.
type History struct {
	TimestampSeconds   *Int64     `json:"timestampSeconds,omitempty"`
	Release            []*Release `json:"release,omitempty"`
	TotalDownloadCount Int64      `json:"totalDownloadCount,omitempty"`
}

type Summary struct {
	LatestTotalDownloads  Int64 `json:"latestTotalDownloads,omitempty"`
	DailyTotalDownloads   Int64 `json:"dailyTotalDownloads,omitempty"`
	WeeklyTotalDownloads  Int64 `json:"weeklyTotalDownloads,omitempty"`
	MonthlyTotalDownloads Int64 `json:"monthlyTotalDownloads,omitempty"`
}

type ReleaseStats struct {
	Repo    *Repository `json:"repo,omitempty"`
	History []*History  `json:"history,omitempty"`
	Summary *Summary    `json:"summary,omitempty"`
}

func (h *History) Timestamp() int64 {
	if h == nil || h.TimestampSeconds == nil {
		return 0
	}
	return int64(*h.TimestampSeconds)
}

func (h *History) Total() int64 {
	if h == nil {
		return 0
	}
	return int64(h.TotalDownloadCount)
}

func (s *ReleaseStats) Latest() *History {
	if s == nil || len(s.History) == 0 {
		return nil
	}
	return s.History[len(s.History)-1]
}

func ptr(v int64) *Int64 {
	i := Int64(v)
	return &i
}
