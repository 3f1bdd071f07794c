package repository

import (
    "context"
    "database/sql"
)

// TicketRepo answers the single question the matchmaking core asks of
// the ticketing domain: does this user hold an active ticket for this
// event?  Purchase, refund and promo-code logic live in the rest of
// the platform and never pass through here.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// HasActiveTicket reports whether the user holds at least one ACTIVE
// ticket for the event.  A missing row is a normal false, not an error.
func (r *TicketRepo) HasActiveTicket(ctx context.Context, userID, eventID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM tickets WHERE user_id = ? AND event_id = ? AND status = 'ACTIVE')`
    var exists bool
    if err := r.db.QueryRowContext(ctx, q, userID, eventID).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}
