// Package engine implements the pairing algorithm at the heart of the
// matchmaking queue: given an event, atomically select the two
// longest-waiting users, create a room for them and mark both matched.
package engine

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/google/uuid"

    "github.com/visually-speaking/matchmaking/internal/lock"
    "github.com/visually-speaking/matchmaking/internal/model"
    "github.com/visually-speaking/matchmaking/internal/repository"
)

// ErrPairConflict is returned when the matched-row update does not
// land on exactly the two selected entries.  Under the event lock and
// row locks this should not happen; it exists as a guard so a violated
// assumption rolls back instead of committing a half-formed pair.
var ErrPairConflict = errors.New("engine: selected entries changed during pairing")

// PairResult reports the outcome of one pairing attempt.  Matched is
// false for the normal "not enough users" outcome; RoomID and the user
// IDs are only meaningful when Matched is true.
type PairResult struct {
    Matched bool
    RoomID  string
    User1ID uint64
    User2ID uint64
}

// Pairer forms pairs for an event.  All selection and state transition
// happens inside a single database transaction; room provisioning with
// the external video provider is deliberately not part of it and is
// performed by callers after a successful pairing commits.
type Pairer struct {
    queueRepo *repository.QueueRepo
    roomRepo  *repository.RoomRepo
    matchRepo *repository.MatchRecordRepo
    locks     *lock.Keyed
}

// NewPairer constructs a Pairer over the given repositories.  All
// dependencies must be non-nil.
func NewPairer(queueRepo *repository.QueueRepo, roomRepo *repository.RoomRepo, matchRepo *repository.MatchRecordRepo) *Pairer {
    if queueRepo == nil || roomRepo == nil || matchRepo == nil {
        panic("nil repository passed to NewPairer")
    }
    return &Pairer{
        queueRepo: queueRepo,
        roomRepo:  roomRepo,
        matchRepo: matchRepo,
        locks:     lock.NewKeyed(),
    }
}

// Pair attempts to form at most one pair of distinct waiting users for
// the event.  Concurrent calls for the same event are serialized: the
// per-event mutex orders attempts within this process and the FOR
// UPDATE row locks inside the transaction protect the selection
// against any other writer of the same rows.  A user can therefore
// never be selected into two concurrently-forming pairs, and the
// second selection excludes the first user so nobody is paired with
// themselves.
//
// When fewer than two users are waiting, Pair returns Matched: false
// with a nil error and leaves every queue entry untouched.  Any error
// rolls the transaction back fully; no partial matched state is ever
// visible to other transactions.
func (p *Pairer) Pair(ctx context.Context, eventID uint64) (*PairResult, error) {
    p.locks.Lock(eventID)
    defer p.locks.Unlock(eventID)

    tx, err := p.queueRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("engine: begin pairing transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    first, err := p.queueRepo.OldestWaitingTx(ctx, tx, eventID, 0)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return &PairResult{Matched: false}, nil
        }
        return nil, fmt.Errorf("engine: select first waiting user: %w", err)
    }
    second, err := p.queueRepo.OldestWaitingTx(ctx, tx, eventID, first.UserID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            // Only one user waiting; the rollback releases the row
            // lock on the first entry and leaves it untouched.
            return &PairResult{Matched: false}, nil
        }
        return nil, fmt.Errorf("engine: select second waiting user: %w", err)
    }

    room := &model.Room{
        ID:      uuid.NewString(),
        EventID: eventID,
    }
    if err := p.roomRepo.CreateTx(ctx, tx, room); err != nil {
        return nil, fmt.Errorf("engine: create room: %w", err)
    }

    affected, err := p.queueRepo.MarkMatchedTx(ctx, tx, eventID, first.UserID, second.UserID, room.ID)
    if err != nil {
        return nil, fmt.Errorf("engine: mark entries matched: %w", err)
    }
    if affected != 2 {
        return nil, ErrPairConflict
    }

    if err := p.matchRepo.InsertTx(ctx, tx, eventID, first.UserID, second.UserID, room.ID); err != nil {
        return nil, fmt.Errorf("engine: record match: %w", err)
    }

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("engine: commit pairing transaction: %w", err)
    }
    committed = true

    return &PairResult{
        Matched: true,
        RoomID:  room.ID,
        User1ID: first.UserID,
        User2ID: second.UserID,
    }, nil
}
