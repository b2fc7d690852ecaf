package usecases

import (
	"testing"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectKeepsCorridorLinesInReportOrder(t *testing.T) {
	p := NewDerivedViewProjector([]string{"京成本線", "総武線快速"})

	view := p.Project([]entities.LineStatus{
		{LineName: "総武線快速", InfoText: "遅れ", StatusKind: entities.StatusDelayed},
		{LineName: "中央線快速", InfoText: "遅れ", StatusKind: entities.StatusDelayed},
		{LineName: "京成本線", InfoText: "運休", StatusKind: entities.StatusServiceCancelled},
	})

	require.Len(t, view, 2)
	assert.Equal(t, "総武線快速", view[0].LineName)
	assert.Equal(t, "京成本線", view[1].LineName)
}

func TestProjectNeverReturnsEmpty(t *testing.T) {
	p := NewDerivedViewProjector([]string{"京成本線"})
	p.Now = func() time.Time { return time.Date(2025, 12, 24, 21, 3, 0, 0, time.Local) }

	for _, report := range [][]entities.LineStatus{
		nil,
		{{LineName: "中央線快速", InfoText: "遅れ", StatusKind: entities.StatusDelayed}},
	} {
		view := p.Project(report)
		require.Len(t, view, 1)
		assert.Equal(t, entities.FallbackLineName, view[0].LineName)
		assert.Equal(t, entities.StatusNormal, view[0].StatusKind)
		assert.Contains(t, view[0].InfoText, "12月24日21時03分更新")
	}
}
