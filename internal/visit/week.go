package visit

import "time"

// WeekStart returns the most recent Monday 00:00:00 in now's location.
// Weekly entry limits reset at that instant.
func WeekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	y, m, d := now.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
