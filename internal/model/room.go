package model

import "time"

// Room records one video session created by a successful pairing.
// The row is created before the external provider call, so
// ProviderURL stays nil when provisioning fails; the pairing is
// still valid in that case.  Rooms are never deleted by the
// matchmaking core and ClosedAt is left for an external janitor.
//
// Fields:
//  ID          – generated identifier, also the provider-visible room name.
//  EventID     – owning event.
//  ProviderURL – join URL returned by the video provider, if any.
//  CreatedAt   – when the pairing created the room.
//  ClosedAt    – when the room was ended (not set by this service).
type Room struct {
    ID          string     // rooms.id
    EventID     uint64     // rooms.event_id
    ProviderURL *string    // rooms.provider_url (nullable)
    CreatedAt   time.Time  // rooms.created_at
    ClosedAt    *time.Time // rooms.closed_at (nullable)
}
