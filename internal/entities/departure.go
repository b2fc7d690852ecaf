package entities

// DepartureRecord represents one row of the bus schedule table
type DepartureRecord struct {
	LeaveTime           string // HH:MM, empty if unrecoverable
	DelayMinutes        string // Non-negative integer, "0" if none reported
	MinutesUntilArrival string // Non-negative integer, "0" if unknown
}

// NoServiceRecord is written when a cycle yields no departures at all
var NoServiceRecord = DepartureRecord{
	LeaveTime:           "00:00",
	DelayMinutes:        "0",
	MinutesUntilArrival: "0",
}

// DepartureHeader is the column layout of the bus schedule table
var DepartureHeader = []string{"leave_time", "delay_time", "minutes_info"}

// Row renders the record in DepartureHeader order
func (d DepartureRecord) Row() []string {
	return []string{d.LeaveTime, d.DelayMinutes, d.MinutesUntilArrival}
}
