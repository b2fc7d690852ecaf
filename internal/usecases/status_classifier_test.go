package usecases

import (
	"errors"
	"testing"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entities.StatusKind
	}{
		{"suspended", "人身事故の影響で、運転を見合わせています。", entities.StatusServiceSuspended},
		{"delayed", "車両点検の影響で、一部列車に遅れが出ています。", entities.StatusDelayed},
		{"schedule disrupted", "強風の影響で、ダイヤが乱れています。", entities.StatusDelayed},
		{"cancelled", "工事のため、一部列車が運休となります。", entities.StatusServiceCancelled},
		{"through service", "相互直通運転を中止しています。", entities.StatusThroughServiceSuspended},
		{"normal literal", "平常運転", entities.StatusNormal},
		{"empty", "", entities.StatusNormal},
		{"free text", "お客様へのお知らせがあります。", entities.StatusInformational},
		{"suspension wins over delay", "運転を見合わせていましたが、遅れが出ています。", entities.StatusServiceSuspended},
		{"delay wins over normal literal", "平常運転 一部列車に遅れ", entities.StatusDelayed},
		{"delay wins over cancellation", "遅れと運休が発生", entities.StatusDelayed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.text))
		})
	}
}

func TestClassifyLineTreatsEmptyNoticeAsNormal(t *testing.T) {
	status := ClassifyLine(entities.Route{LineName: "京王線"}, "")

	assert.Equal(t, "京王線", status.LineName)
	assert.Equal(t, entities.NormalOperationText, status.InfoText)
	assert.Equal(t, entities.StatusNormal, status.StatusKind)
}

func TestFetchFailedStatus(t *testing.T) {
	status := FetchFailedStatus(entities.Route{LineName: "京成本線"}, errors.New("timeout"))

	assert.Equal(t, entities.StatusFetchFailed, status.StatusKind)
	assert.Contains(t, status.InfoText, "timeout")
	assert.False(t, status.StatusKind.IsDisruption())
}
