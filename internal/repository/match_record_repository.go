package repository

import (
    "context"
    "database/sql"

    "github.com/visually-speaking/matchmaking/internal/model"
)

// MatchRecordRepo provides access to the append-only match history.
// Live matching does not read this table; it exists for audit and for
// the admin history endpoint.
type MatchRecordRepo struct {
    db *sql.DB
}

// NewMatchRecordRepo returns a new MatchRecordRepo bound to the given database.
func NewMatchRecordRepo(db *sql.DB) *MatchRecordRepo { return &MatchRecordRepo{db: db} }

// InsertTx appends a match record within the pairing transaction.  The
// two user IDs may be passed in either order; they are swapped into
// canonical form before insertion.
func (r *MatchRecordRepo) InsertTx(ctx context.Context, tx *sql.Tx, eventID, userA, userB uint64, roomID string) error {
    if userA > userB {
        userA, userB = userB, userA
    }
    const q = `INSERT INTO match_records (event_id, user1_id, user2_id, room_id, started_at)
               VALUES (?, ?, ?, ?, UTC_TIMESTAMP(6))`
    _, err := tx.ExecContext(ctx, q, eventID, userA, userB, roomID)
    return err
}

// ListByEvent returns the match history for an event, newest first.
// When no matches have been formed, an empty slice is returned.
func (r *MatchRecordRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.MatchRecord, error) {
    const q = `SELECT id, event_id, user1_id, user2_id, room_id, started_at
               FROM match_records
               WHERE event_id = ?
               ORDER BY started_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    records := make([]model.MatchRecord, 0)
    for rows.Next() {
        var rec model.MatchRecord
        if err := rows.Scan(&rec.ID, &rec.EventID, &rec.User1ID, &rec.User2ID, &rec.RoomID, &rec.StartedAt); err != nil {
            return nil, err
        }
        records = append(records, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return records, nil
}
