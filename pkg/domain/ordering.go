package domain

import "sort"

// SortAppointments orders appointments by "date time" with a byte-wise string
// comparison. Equal keys keep their relative order.
func SortAppointments(items []Appointment) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortKey() < items[j].SortKey() })
}

// SortReports orders reports by date string. Reports taken on the same date keep
// their relative order.
func SortReports(items []Report) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
}
