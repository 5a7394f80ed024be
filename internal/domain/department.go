package domain

import "time"

// Department is the organizational unit that gates ticket visibility.
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
