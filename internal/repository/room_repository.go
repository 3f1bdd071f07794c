package repository

import (
    "context"
    "database/sql"

    "github.com/visually-speaking/matchmaking/internal/model"
)

// RoomRepo provides data access to the rooms table.  Rooms are created
// by the pairing transaction before the external video provider is
// contacted, so provider_url is nullable and filled in as a follow-up.
// This service never deletes or closes rooms.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// CreateTx inserts a new room within the scope of an existing
// transaction.  The room starts with no provider URL.  It populates the
// CreatedAt field on the provided record from the database so callers
// see the committed timestamp.  The caller must commit or rollback the
// transaction.
func (r *RoomRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.Room) error {
    const q = `INSERT INTO rooms (id, event_id, provider_url, created_at) VALUES (?, ?, NULL, UTC_TIMESTAMP(6))`
    if _, err := tx.ExecContext(ctx, q, rec.ID, rec.EventID); err != nil {
        return err
    }
    const sel = `SELECT created_at FROM rooms WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt)
}

// SetProviderURL records the join URL returned by the video provider.
// This runs outside the pairing transaction: provisioning is a
// best-effort follow-up and its failure must not roll back a committed
// pairing.  Setting the URL for an unknown room returns ErrNotFound.
func (r *RoomRepo) SetProviderURL(ctx context.Context, roomID, url string) error {
    const q = `UPDATE rooms SET provider_url = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, url, roomID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// GetByID returns a single room.  sql.ErrNoRows is returned when the
// room does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, roomID string) (*model.Room, error) {
    const q = `SELECT id, event_id, provider_url, created_at, closed_at FROM rooms WHERE id = ?`
    var rec model.Room
    var url sql.NullString
    var closed sql.NullTime
    err := r.db.QueryRowContext(ctx, q, roomID).Scan(&rec.ID, &rec.EventID, &url, &rec.CreatedAt, &closed)
    if err != nil {
        return nil, err
    }
    if url.Valid {
        u := url.String
        rec.ProviderURL = &u
    }
    if closed.Valid {
        t := closed.Time
        rec.ClosedAt = &t
    }
    return &rec, nil
}

// CountOpenByEvent returns the number of rooms for the event that have
// not been closed.  Because nothing in this service sets closed_at,
// this is in practice the number of rooms ever created for the event;
// the predicate exists so the count stays correct once an external
// cleanup process adopts the column.
func (r *RoomRepo) CountOpenByEvent(ctx context.Context, eventID uint64) (int64, error) {
    const q = `SELECT COUNT(*) FROM rooms WHERE event_id = ? AND closed_at IS NULL`
    var n int64
    err := r.db.QueryRowContext(ctx, q, eventID).Scan(&n)
    return n, err
}
