package model

import "time"

// MatchRecord is the append-only history of formed pairs.  User IDs
// are stored in canonical order (User1ID < User2ID) so a duplicate
// pair is always the same row shape regardless of who joined first.
// The live queue does not depend on this table; it exists for audit
// and admin history.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event the pair was formed for.
//  User1ID   – smaller of the two user IDs.
//  User2ID   – larger of the two user IDs.
//  RoomID    – room the pair was placed into.
//  StartedAt – when the pairing committed.
type MatchRecord struct {
    ID        uint64    // match_records.id
    EventID   uint64    // match_records.event_id
    User1ID   uint64    // match_records.user1_id
    User2ID   uint64    // match_records.user2_id
    RoomID    string    // match_records.room_id
    StartedAt time.Time // match_records.started_at
}
