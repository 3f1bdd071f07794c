// Package queue defines message payloads exchanged over the message broker.
package queue

// MatchCreatedEvent is published after a pairing transaction commits.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
// DailyURL is empty when provisioning had not succeeded at publish
// time; the pairing is still valid in that case.
type MatchCreatedEvent struct {
    EventID   uint64 `json:"event_id"`
    RoomID    string `json:"room_id"`
    User1ID   uint64 `json:"user1_id"`
    User2ID   uint64 `json:"user2_id"`
    DailyURL  string `json:"daily_url,omitempty"`
    MatchedAt string `json:"matched_at"`
}
