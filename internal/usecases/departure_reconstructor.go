package usecases

import (
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
)

// DefaultTransitMinutes is the stop-to-destination journey time used when the page declares none
const DefaultTransitMinutes = 19

const clockLayout = "15:04"

var (
	scheduledTimeRe = regexp.MustCompile(`定刻:(\d{2}:\d{2})`)
	arrivalTimeRe   = regexp.MustCompile(`到着予定:(\d{2}:\d{2})`)
	delayRe         = regexp.MustCompile(`遅れ(\d+)分`)
	minutesInfoRe   = regexp.MustCompile(`(\d+)分後に到着`)
)

// reconstructorState is the pending scheduled-marker data carried between fragments
type reconstructorState struct {
	primed              bool
	leaveTime           string
	delayMinutes        string
	minutesUntilArrival string // Empty means recover from the clock on emit
}

// DepartureReconstructor folds scheduled/estimate fragment pairs into departure records
type DepartureReconstructor struct {
	// TransitMinutes is subtracted from an unpaired arrival estimate to recover its leave time
	TransitMinutes int
	Now            func() time.Time
	Verbose        bool
}

// NewDepartureReconstructor creates a reconstructor; a non-positive offset selects DefaultTransitMinutes
func NewDepartureReconstructor(transitMinutes int) *DepartureReconstructor {
	if transitMinutes <= 0 {
		transitMinutes = DefaultTransitMinutes
	}
	return &DepartureReconstructor{
		TransitMinutes: transitMinutes,
		Now:            time.Now,
	}
}

// Reconstruct reduces every group independently and concatenates the records in group order
func (r *DepartureReconstructor) Reconstruct(groups []entities.FragmentGroup) []entities.DepartureRecord {
	var records []entities.DepartureRecord
	for _, group := range groups {
		records = append(records, r.reconstructGroup(group)...)
	}
	return records
}

func (r *DepartureReconstructor) reconstructGroup(group entities.FragmentGroup) []entities.DepartureRecord {
	offset := r.TransitMinutes
	if group.TransitMinutes != "" {
		if m, err := strconv.Atoi(group.TransitMinutes); err == nil && m >= 0 {
			offset = m
		}
	}

	var (
		state   reconstructorState
		records []entities.DepartureRecord
	)
	for _, fragment := range group.Fragments {
		var record *entities.DepartureRecord
		state, record = r.step(state, fragment, offset)
		if record != nil {
			records = append(records, *record)
		}
	}

	if state.primed && r.Verbose {
		log.Printf("Discarding scheduled marker %s with no arrival estimate", state.leaveTime)
	}
	return records
}

// step applies one fragment to the state and returns the next state and any emitted record
func (r *DepartureReconstructor) step(state reconstructorState, fragment entities.Fragment, offset int) (reconstructorState, *entities.DepartureRecord) {
	switch fragment.Kind {
	case entities.KindScheduled:
		next := reconstructorState{
			primed:       true,
			leaveTime:    matchClock(scheduledTimeRe, fragment.Text),
			delayMinutes: firstSubmatch(delayRe, fragment.Text),
		}
		if next.delayMinutes == "" {
			next.delayMinutes = "0"
		}
		if fragment.CompanionText != "" {
			next.minutesUntilArrival = firstSubmatch(minutesInfoRe, fragment.CompanionText)
		}
		if r.Verbose {
			log.Printf("Scheduled marker: leave=%q delay=%q minutes=%q", next.leaveTime, next.delayMinutes, next.minutesUntilArrival)
		}
		return next, nil

	case entities.KindArrivalEstimate:
		arrival := matchClock(arrivalTimeRe, fragment.Text)
		if arrival == "" {
			if r.Verbose {
				log.Printf("Dropping arrival estimate without a parseable time: %q", fragment.Text)
			}
			return state, nil
		}

		if !state.primed {
			return reconstructorState{}, &entities.DepartureRecord{
				LeaveTime:           subtractMinutes(arrival, offset),
				DelayMinutes:        "0",
				MinutesUntilArrival: "0",
			}
		}

		leave := state.leaveTime
		if leave == "" {
			leave = subtractMinutes(arrival, offset)
		}
		minutes := state.minutesUntilArrival
		if minutes == "" {
			minutes = minutesSince(leave, r.Now())
		}
		return reconstructorState{}, &entities.DepartureRecord{
			LeaveTime:           leave,
			DelayMinutes:        state.delayMinutes,
			MinutesUntilArrival: minutes,
		}
	}

	return state, nil
}

func firstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// matchClock extracts an HH:MM value and rejects impossible clock readings
func matchClock(re *regexp.Regexp, text string) string {
	value := firstSubmatch(re, text)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(clockLayout, value); err != nil {
		return ""
	}
	return value
}

// subtractMinutes is wall-clock subtraction on a 24-hour dial
func subtractMinutes(clock string, minutes int) string {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return ""
	}
	return t.Add(-time.Duration(minutes) * time.Minute).Format(clockLayout)
}

// minutesSince returns whole minutes from the leave time to now on the same day, never negative
func minutesSince(clock string, now time.Time) string {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return "0"
	}
	leave := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	diff := int(now.Sub(leave) / time.Minute)
	if diff < 0 {
		diff = 0
	}
	return strconv.Itoa(diff)
}
