// Package clock provides the wall clock used outside tests.
package clock

import "time"

type System struct{}

// Now returns the current time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
