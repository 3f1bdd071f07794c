package repository

import (
    "context"
    "database/sql"

    "github.com/visually-speaking/matchmaking/internal/model"
)

// QueueRepo provides data access to the queue_entries table.  A queue
// entry exists while a user participates in an event's matchmaking
// queue and carries their waiting/matched state.  The unique key on
// (event_id, user_id) guarantees at most one entry per user per event.
// All timestamps are stored and compared in UTC.
type QueueRepo struct {
    db *sql.DB
}

// NewQueueRepo returns a new QueueRepo bound to the given database.
func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

// DB exposes the underlying database handle so that callers can begin
// transactions spanning multiple repositories.
func (r *QueueRepo) DB() *sql.DB { return r.db }

// UpsertWaiting inserts a queue entry for the given user and event, or
// resets an existing one to the waiting state.  Repeated calls simply
// refresh joined_at, so joining twice is harmless and "request next
// match" can reuse this to clear a previous room association.  The
// unique key on (event_id, user_id) makes the upsert race-free without
// an external lock.
func (r *QueueRepo) UpsertWaiting(ctx context.Context, eventID, userID uint64) error {
    const q = `INSERT INTO queue_entries (event_id, user_id, joined_at, is_matched, current_room_id)
               VALUES (?, ?, UTC_TIMESTAMP(6), 0, NULL)
               ON DUPLICATE KEY UPDATE joined_at = UTC_TIMESTAMP(6), is_matched = 0, current_room_id = NULL`
    _, err := r.db.ExecContext(ctx, q, eventID, userID)
    return err
}

// Remove deletes the user's queue entry for the event if present.
// Removing a non-existent entry is not an error, which makes "leave"
// idempotent for clients that retry.
func (r *QueueRepo) Remove(ctx context.Context, eventID, userID uint64) error {
    const q = `DELETE FROM queue_entries WHERE event_id = ? AND user_id = ?`
    _, err := r.db.ExecContext(ctx, q, eventID, userID)
    return err
}

// GetStatus returns the user's current queue entry for the event.  When
// the user is not in the queue, sql.ErrNoRows is returned and callers
// should present that as the "not_in_queue" status rather than a
// failure.
func (r *QueueRepo) GetStatus(ctx context.Context, eventID, userID uint64) (*model.QueueEntry, error) {
    const q = `SELECT id, event_id, user_id, joined_at, is_matched, current_room_id
               FROM queue_entries
               WHERE event_id = ? AND user_id = ?`
    var rec model.QueueEntry
    var roomID sql.NullString
    err := r.db.QueryRowContext(ctx, q, eventID, userID).Scan(
        &rec.ID, &rec.EventID, &rec.UserID, &rec.JoinedAt, &rec.IsMatched, &roomID,
    )
    if err != nil {
        return nil, err
    }
    if roomID.Valid {
        rid := roomID.String
        rec.CurrentRoomID = &rid
    }
    return &rec, nil
}

// OldestWaitingTx selects the single longest-waiting unmatched entry
// for the event, locking the row for the duration of the transaction.
// When excludeUserID is non-zero that user is skipped, which is how the
// pairing transaction picks a second user distinct from the first.  It
// returns sql.ErrNoRows when no waiting entry is available; callers
// treat that as the normal "not enough users" outcome.
func (r *QueueRepo) OldestWaitingTx(ctx context.Context, tx *sql.Tx, eventID, excludeUserID uint64) (*model.QueueEntry, error) {
    // Ordering by joined_at then id keeps selection deterministic when
    // two users joined within the same microsecond.
    q := `SELECT id, event_id, user_id, joined_at, is_matched, current_room_id
          FROM queue_entries
          WHERE event_id = ? AND is_matched = 0`
    args := []interface{}{eventID}
    if excludeUserID != 0 {
        q += ` AND user_id <> ?`
        args = append(args, excludeUserID)
    }
    q += ` ORDER BY joined_at ASC, id ASC LIMIT 1 FOR UPDATE`
    var rec model.QueueEntry
    var roomID sql.NullString
    err := tx.QueryRowContext(ctx, q, args...).Scan(
        &rec.ID, &rec.EventID, &rec.UserID, &rec.JoinedAt, &rec.IsMatched, &roomID,
    )
    if err != nil {
        return nil, err
    }
    if roomID.Valid {
        rid := roomID.String
        rec.CurrentRoomID = &rid
    }
    return &rec, nil
}

// MarkMatchedTx transitions exactly the two given users to the matched
// state, associating them with the room.  The is_matched = 0 guard
// means an entry that a concurrent transaction already matched is not
// silently re-matched; the returned affected-row count lets the caller
// verify that both updates landed and roll back otherwise.  This method
// is only safe inside the pairing transaction that selected the rows.
func (r *QueueRepo) MarkMatchedTx(ctx context.Context, tx *sql.Tx, eventID, userA, userB uint64, roomID string) (int64, error) {
    const q = `UPDATE queue_entries
               SET is_matched = 1, current_room_id = ?
               WHERE event_id = ? AND user_id IN (?, ?) AND is_matched = 0`
    res, err := tx.ExecContext(ctx, q, roomID, eventID, userA, userB)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// CountsByEvent returns the number of waiting and matched entries for
// the event.  Used by the public queue stats endpoint; the numbers are
// a point-in-time snapshot, not a consistent read with any pairing
// transaction.
func (r *QueueRepo) CountsByEvent(ctx context.Context, eventID uint64) (waiting int64, matched int64, err error) {
    const q = `SELECT
                 COALESCE(SUM(CASE WHEN is_matched = 0 THEN 1 ELSE 0 END), 0),
                 COALESCE(SUM(CASE WHEN is_matched = 1 THEN 1 ELSE 0 END), 0)
               FROM queue_entries WHERE event_id = ?`
    err = r.db.QueryRowContext(ctx, q, eventID).Scan(&waiting, &matched)
    return waiting, matched, err
}
