package usecases

import (
	"strings"

	"github.com/abelzeko/transit-board/internal/entities"
)

// classificationRule maps any of its markers to a status kind
type classificationRule struct {
	markers []string
	kind    entities.StatusKind
}

// Rule order is significant: a snippet mentioning both a suspension and a delay is a suspension.
var classificationRules = []classificationRule{
	{markers: []string{"見合わせ"}, kind: entities.StatusServiceSuspended},
	{markers: []string{"遅れ", "ダイヤが乱れ"}, kind: entities.StatusDelayed},
	{markers: []string{"運休"}, kind: entities.StatusServiceCancelled},
	{markers: []string{"直通運転を中止"}, kind: entities.StatusThroughServiceSuspended},
}

// ClassifyStatus maps one line's disruption text to exactly one status kind
func ClassifyStatus(text string) entities.StatusKind {
	for _, rule := range classificationRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.kind
			}
		}
	}
	if text == "" || text == entities.NormalOperationText {
		return entities.StatusNormal
	}
	return entities.StatusInformational
}

// ClassifyLine builds the line's status entry from its notice text
func ClassifyLine(route entities.Route, text string) entities.LineStatus {
	if text == "" {
		text = entities.NormalOperationText
	}
	return entities.LineStatus{
		LineName:   route.LineName,
		InfoText:   text,
		StatusKind: ClassifyStatus(text),
	}
}

// FetchFailedStatus is the explicit entry for a line whose page could not be retrieved
func FetchFailedStatus(route entities.Route, err error) entities.LineStatus {
	info := "運行情報を取得できませんでした"
	if err != nil {
		info += ": " + err.Error()
	}
	return entities.LineStatus{
		LineName:   route.LineName,
		InfoText:   info,
		StatusKind: entities.StatusFetchFailed,
	}
}
