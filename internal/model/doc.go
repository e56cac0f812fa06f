// Package model defines the domain entities and error taxonomy for the
// trip sync engine.
//
// The model package contains the Trip snapshot as returned by the Toota
// trip service, the lifecycle Status and actor Role enumerations, and the
// SyncError type used across all engine layers.
//
// # Domain Entities
//
// Core entities:
//
//   - Trip: a requested movement of goods/persons with a lifecycle status
//   - Location: a pickup or dropoff point with optional coordinates
//   - DriverRef: a weak reference to the assigned driver
//
// # JSON Serialization
//
// All models use json struct tags matching the trip service wire format:
//
//	type Trip struct {
//	    ID     string `json:"id"`
//	    Status Status `json:"status"`
//	    Pickup Location `json:"pickup"`
//	}
//
// # Error Types
//
// Every failure the engine surfaces is a *SyncError carrying a Kind. The
// Kind maps to a human-readable message category via Kind.Message();
// transport details never reach presentation layers.
package model
