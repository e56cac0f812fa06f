package model

import "time"

// Trip is the client-side snapshot of a trip as returned by the trip
// service. The engine never invents trips; every entry originates from a
// server response and Updated is the server-assigned staleness key.
type Trip struct {
	ID             string     `json:"id"`
	Status         Status     `json:"status"`
	Pickup         Location   `json:"pickup"`
	Dropoff        Location   `json:"dropoff"`
	Bid            float64    `json:"bid"`
	PickupTime     time.Time  `json:"pickup_time"`
	VehicleType    string     `json:"vehicle_type"`
	LoadDesc       string     `json:"load_description"`
	NumberOfFloors int        `json:"number_of_floors"`
	Driver         *DriverRef `json:"driver,omitempty"`
	Created        time.Time  `json:"created"`
	Updated        time.Time  `json:"updated"`
}

// Location is a pickup or dropoff point. Coordinates and phone are optional;
// the label is always present.
type Location struct {
	Label string   `json:"label"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
	Phone *string  `json:"phone,omitempty"`
}

// DriverRef is a weak reference to the assigned driver. It is absent while a
// trip is REQUESTED and never cleared afterward while the trip is active.
type DriverRef struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Active returns true while the trip has not reached a terminal status.
func (t Trip) Active() bool {
	return !t.Status.Terminal()
}

// NewerThan reports whether t carries a strictly newer server timestamp
// than other. Equal timestamps are not newer.
func (t Trip) NewerThan(other Trip) bool {
	return t.Updated.After(other.Updated)
}
