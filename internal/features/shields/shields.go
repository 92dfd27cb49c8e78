// Package shields builds shields.io endpoint badges for download counts.
//
// See https://shields.io/endpoint for the schema.
package shields

import (
	"encoding/json"
	"fmt"

	"github.com/haya14busa/github-release-stats/internal/stats"

	humanize "github.com/dustin/go-humanize"
)

type Response struct {
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	Label         string `json:"label,omitempty"`
	Message       string `json:"message,omitempty"`
	Color         string `json:"color,omitempty"`
	NamedLogo     string `json:"namedLogo,omitempty"`
}

// Endpoint is one badge file derived from the summary.
type Endpoint struct {
	FileName string
	Response Response
}

// ReadableNum formats input with an SI prefix, truncated to decimals:
// 1234 -> "1.2k", 123456 -> "123.4k".
func ReadableNum(input int64, decimals int) string {
	value, prefix := humanize.ComputeSI(float64(input))
	return humanize.FtoaWithDigits(value, decimals) + prefix
}

func newResponse(value int64, suffix string) Response {
	return Response{
		SchemaVersion: 1,
		Label:         "downloads",
		NamedLogo:     "github",
		Color:         "brightgreen",
		Message:       ReadableNum(value, 1) + suffix,
	}
}

// Endpoints returns the total, daily, weekly and monthly badges of s.
func Endpoints(s *stats.Summary) []Endpoint {
	if s == nil {
		s = &stats.Summary{}
	}
	return []Endpoint{
		{FileName: "total.json", Response: newResponse(int64(s.LatestTotalDownloads), "")},
		{FileName: "daily.json", Response: newResponse(int64(s.DailyTotalDownloads), "/day")},
		{FileName: "weekly.json", Response: newResponse(int64(s.WeeklyTotalDownloads), "/week")},
		{FileName: "monthly.json", Response: newResponse(int64(s.MonthlyTotalDownloads), "/month")},
	}
}

// Marshal encodes the badge as compact JSON.
func (e Endpoint) Marshal() ([]byte, error) {
	data, err := json.Marshal(e.Response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.FileName, err)
	}
	return data, nil
}
