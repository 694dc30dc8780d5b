package domain

import (
	"fmt"
	"strings"
	"time"
)

type SeatClassType string

const (
	SeatClassEconomy  SeatClassType = "ECONOMY"
	SeatClassBusiness SeatClassType = "BUSINESS"
	SeatClassFirst    SeatClassType = "FIRST"
)

var SeatClassTypes = []SeatClassType{SeatClassEconomy, SeatClassBusiness, SeatClassFirst}

func ParseSeatClass(s string) (SeatClassType, error) {
	switch class := SeatClassType(strings.ToUpper(strings.TrimSpace(s))); class {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return class, nil
	default:
		return "", InvalidArgument("invalid seat class %q", s)
	}
}

// SeatClass is the inventory row for one class on one flight.
// AvailableSeats never drops below zero and never exceeds Capacity.
type SeatClass struct {
	ID             int64
	FlightID       int64
	Class          SeatClassType
	AvailableSeats int
	Capacity       int
	FareCents      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NextSeatNumber labels the seat handed out by the next booking: the class
// name followed by the number of seats still available before the decrement.
func (s SeatClass) NextSeatNumber() string {
	return SeatNumber(s.Class, s.AvailableSeats)
}

func SeatNumber(class SeatClassType, available int) string {
	return fmt.Sprintf("%s-%d", class, available)
}

// InventoryDrift reports a seat class whose counter disagrees with the ledger.
type InventoryDrift struct {
	SeatClassID    int64
	FlightID       int64
	Class          SeatClassType
	AvailableSeats int
	ActiveBookings int
	Capacity       int
}

func (d InventoryDrift) Delta() int {
	return d.AvailableSeats + d.ActiveBookings - d.Capacity
}
