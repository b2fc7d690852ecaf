package entities

import (
	"fmt"
	"time"
)

// StatusKind is the closed set of line status outcomes
type StatusKind string

const (
	StatusServiceSuspended        StatusKind = "service_suspended"
	StatusDelayed                 StatusKind = "delayed"
	StatusServiceCancelled        StatusKind = "service_cancelled"
	StatusThroughServiceSuspended StatusKind = "through_service_suspended"
	StatusInformational           StatusKind = "informational"
	StatusNormal                  StatusKind = "normal"
	StatusFetchFailed             StatusKind = "fetch_failed"
)

var statusLabels = map[StatusKind]string{
	StatusServiceSuspended:        "運転見合わせ",
	StatusDelayed:                 "遅延",
	StatusServiceCancelled:        "運休",
	StatusThroughServiceSuspended: "直通運転中止",
	StatusInformational:           "情報",
	StatusNormal:                  "平常運転",
	StatusFetchFailed:             "取得失敗",
}

// Label returns the operator-facing label written to the report tables
func (k StatusKind) Label() string {
	if label, ok := statusLabels[k]; ok {
		return label
	}
	return string(k)
}

// IsDisruption reports whether the kind is a reportable disruption signal
func (k StatusKind) IsDisruption() bool {
	return k != StatusNormal && k != StatusFetchFailed
}

// NormalOperationText is the canonical literal a page shows when nothing is wrong
const NormalOperationText = "平常運転"

// FallbackLineName is the sentinel line label of the "all normal" entry
const FallbackLineName = "現在の運行状況："

// LineStatus represents one row of the disruption report
type LineStatus struct {
	LineName   string
	InfoText   string
	StatusKind StatusKind
}

// LineStatusHeader is the column layout of the disruption and corridor tables
var LineStatusHeader = []string{"路線名", "運行情報", "ステータス"}

// Row renders the entry in LineStatusHeader order
func (s LineStatus) Row() []string {
	return []string{s.LineName, s.InfoText, s.StatusKind.Label()}
}

// FallbackStatus builds the synthetic "broadly normal" entry stamped with now
func FallbackStatus(now time.Time) LineStatus {
	return LineStatus{
		LineName: FallbackLineName,
		InfoText: fmt.Sprintf("首都圏の鉄道路線はおおむね平常運転です。（%d月%d日%02d時%02d分更新）",
			int(now.Month()), now.Day(), now.Hour(), now.Minute()),
		StatusKind: StatusNormal,
	}
}

// LineOutcome is the per-line result of one disruption cycle, before aggregation
type LineOutcome struct {
	Route  Route
	Status LineStatus
	Err    error // Set when StatusKind is StatusFetchFailed
}
