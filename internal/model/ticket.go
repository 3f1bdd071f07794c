package model

import "time"

// Ticket mirrors the platform's tickets table.  The matchmaking
// core never creates or mutates tickets – purchase and refund flows
// live elsewhere – it only checks that a user holds an ACTIVE ticket
// before letting them into an event's queue.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – ticket holder.
//  EventID   – event the ticket admits the holder to.
//  Status    – ticket state (ACTIVE, REFUNDED, CANCELLED).
//  CreatedAt – purchase timestamp.
type Ticket struct {
    ID        uint64    // tickets.id
    UserID    uint64    // tickets.user_id
    EventID   uint64    // tickets.event_id
    Status    string    // tickets.status
    CreatedAt time.Time // tickets.created_at
}
