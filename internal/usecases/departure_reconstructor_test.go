package usecases

import (
	"testing"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduled(text, companion string) entities.Fragment {
	return entities.Fragment{Kind: entities.KindScheduled, Text: text, CompanionText: companion}
}

func estimate(text string) entities.Fragment {
	return entities.Fragment{Kind: entities.KindArrivalEstimate, Text: text}
}

func fixedReconstructor(now time.Time) *DepartureReconstructor {
	r := NewDepartureReconstructor(DefaultTransitMinutes)
	r.Now = func() time.Time { return now }
	return r
}

func TestReconstructPairsScheduledWithEstimate(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 8, 5, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{
			scheduled("定刻:08:00発", ""),
			estimate("到着予定:08:19"),
		},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, "08:00", records[0].LeaveTime)
	assert.Equal(t, "0", records[0].DelayMinutes)
	// No companion text, so derived from the clock: 08:05 - 08:00
	assert.Equal(t, "5", records[0].MinutesUntilArrival)
}

func TestReconstructUsesCompanionMinutesAndDelay(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{
			scheduled("定刻:08:10発 遅れ3分", "約12分後に到着"),
			estimate("到着予定:08:32"),
		},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, entities.DepartureRecord{LeaveTime: "08:10", DelayMinutes: "3", MinutesUntilArrival: "12"}, records[0])
}

func TestReconstructLoneEstimateUsesOffset(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 9, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{estimate("到着予定:08:19")},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, entities.DepartureRecord{LeaveTime: "08:00", DelayMinutes: "0", MinutesUntilArrival: "0"}, records[0])
}

func TestReconstructPageOffsetOverridesDefault(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 9, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments:      []entities.Fragment{estimate("到着予定:08:19")},
		TransitMinutes: "25",
	}})

	require.Len(t, records, 1)
	assert.Equal(t, "07:54", records[0].LeaveTime)
}

func TestReconstructOffsetWrapsPastMidnight(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 0, 30, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{estimate("到着予定:00:10")},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, "23:51", records[0].LeaveTime)
}

func TestReconstructDropsEstimateWithoutTime(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{
			scheduled("定刻:08:00発", "10分後に到着"),
			estimate("到着予定:--:--"),
			estimate("到着予定:08:21"),
		},
	}})

	// The unparseable estimate leaves the pending scheduled marker intact
	require.Len(t, records, 1)
	assert.Equal(t, entities.DepartureRecord{LeaveTime: "08:00", DelayMinutes: "0", MinutesUntilArrival: "10"}, records[0])
}

func TestReconstructNeverEmitsFromScheduledOnly(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{
		{Fragments: []entities.Fragment{scheduled("定刻:08:00発", "")}},
		{Fragments: []entities.Fragment{scheduled("定刻:08:30発", ""), scheduled("定刻:08:40発", "")}},
	})

	assert.Empty(t, records)
}

func TestReconstructResetsStateBetweenGroups(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 9, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{
		{Fragments: []entities.Fragment{scheduled("定刻:08:00発 遅れ5分", "3分後に到着")}},
		{Fragments: []entities.Fragment{estimate("到着予定:08:49")}},
	})

	// The pending marker of the first group must not pair with the second group's estimate
	require.Len(t, records, 1)
	assert.Equal(t, entities.DepartureRecord{LeaveTime: "08:30", DelayMinutes: "0", MinutesUntilArrival: "0"}, records[0])
}

func TestReconstructMinutesClampedForFutureLeave(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{scheduled("定刻:08:00発", ""), estimate("到着予定:08:19")},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, "0", records[0].MinutesUntilArrival)
}

func TestReconstructUnparsableLeaveFallsBackToOffset(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local))

	records := r.Reconstruct([]entities.FragmentGroup{{
		Fragments: []entities.Fragment{scheduled("定刻:99:99発 遅れ2分", "4分後に到着"), estimate("到着予定:08:19")},
	}})

	require.Len(t, records, 1)
	assert.Equal(t, entities.DepartureRecord{LeaveTime: "08:00", DelayMinutes: "2", MinutesUntilArrival: "4"}, records[0])
}

func TestReconstructEveryRecordFollowsAnEstimate(t *testing.T) {
	r := fixedReconstructor(time.Date(2025, 5, 1, 12, 0, 0, 0, time.Local))

	fragments := []entities.Fragment{
		scheduled("定刻:08:00発", ""),
		estimate("到着予定:08:19"),
		estimate("到着予定:08:40"),
		scheduled("定刻:09:00発", ""),
		estimate("到着予定:?"),
		scheduled("定刻:09:10発", ""),
	}

	records := r.Reconstruct([]entities.FragmentGroup{{Fragments: fragments}})

	parseable := 0
	for _, f := range fragments {
		if f.Kind == entities.KindArrivalEstimate && matchClock(arrivalTimeRe, f.Text) != "" {
			parseable++
		}
	}
	assert.Len(t, records, parseable)
}

func TestNewDepartureReconstructorDefaultsOffset(t *testing.T) {
	assert.Equal(t, DefaultTransitMinutes, NewDepartureReconstructor(0).TransitMinutes)
	assert.Equal(t, 30, NewDepartureReconstructor(30).TransitMinutes)
}
