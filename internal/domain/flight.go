package domain

import (
	"strings"
	"time"
)

type FlightStatus string

const (
	FlightStatusOnTime    FlightStatus = "ON_TIME"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

// ParseFlightStatus accepts a status name case-insensitively.
func ParseFlightStatus(s string) (FlightStatus, error) {
	switch status := FlightStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case FlightStatusOnTime, FlightStatusDelayed, FlightStatusCancelled:
		return status, nil
	default:
		return "", InvalidArgument("invalid flight status %q", s)
	}
}

type Flight struct {
	ID            int64
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	Status        FlightStatus
	SeatClasses   []SeatClass
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DepartureDate truncates the departure time to its UTC calendar day.
func (f Flight) DepartureDate() time.Time {
	return DayOf(f.DepartureTime)
}

// DayOf returns midnight UTC of the day t falls on.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
