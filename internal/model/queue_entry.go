package model

import "time"

// QueueEntry tracks a single user's membership in an event's
// matchmaking queue.  A user has at most one entry per event
// (unique key on event_id + user_id).  Entries move between the
// WAITING and MATCHED states; absence of a row means the user is
// not in the queue at all.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event whose queue this entry belongs to.
//  UserID        – waiting or matched user.
//  JoinedAt      – when the user (last) joined; oldest-first tie break.
//  IsMatched     – true once the user has been paired into a room.
//  CurrentRoomID – room the user was paired into; nil while waiting.
type QueueEntry struct {
    ID            uint64    // queue_entries.id
    EventID       uint64    // queue_entries.event_id
    UserID        uint64    // queue_entries.user_id
    JoinedAt      time.Time // queue_entries.joined_at
    IsMatched     bool      // queue_entries.is_matched
    CurrentRoomID *string   // queue_entries.current_room_id (nullable)
}
