package engine

import (
    "context"
    "database/sql"
    "fmt"
    "os"
    "sync"
    "testing"

    _ "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/visually-speaking/matchmaking/internal/repository"
)

// setupIntegrationDB connects to the MySQL instance named by
// MYSQL_TEST_DSN and resets the matchmaking tables.  The test is
// skipped when the variable is unset so the suite stays self-contained
// on machines without a database.
func setupIntegrationDB(t *testing.T) *sql.DB {
    t.Helper()
    dsn := os.Getenv("MYSQL_TEST_DSN")
    if dsn == "" {
        t.Skip("MYSQL_TEST_DSN not set")
    }
    db, err := sql.Open("mysql", dsn)
    require.NoError(t, err)
    if err := db.Ping(); err != nil {
        t.Skip("MySQL not available:", err)
    }
    t.Cleanup(func() { _ = db.Close() })

    stmts := []string{
        `CREATE TABLE IF NOT EXISTS queue_entries (
            id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            event_id BIGINT UNSIGNED NOT NULL,
            user_id BIGINT UNSIGNED NOT NULL,
            joined_at DATETIME(6) NOT NULL,
            is_matched TINYINT(1) NOT NULL DEFAULT 0,
            current_room_id CHAR(36) NULL,
            UNIQUE KEY uq_event_user (event_id, user_id)
        )`,
        `CREATE TABLE IF NOT EXISTS rooms (
            id CHAR(36) PRIMARY KEY,
            event_id BIGINT UNSIGNED NOT NULL,
            provider_url TEXT NULL,
            created_at DATETIME(6) NOT NULL,
            closed_at DATETIME(6) NULL
        )`,
        `CREATE TABLE IF NOT EXISTS match_records (
            id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            event_id BIGINT UNSIGNED NOT NULL,
            user1_id BIGINT UNSIGNED NOT NULL,
            user2_id BIGINT UNSIGNED NOT NULL,
            room_id CHAR(36) NOT NULL,
            started_at DATETIME(6) NOT NULL
        )`,
        `DELETE FROM queue_entries`,
        `DELETE FROM rooms`,
        `DELETE FROM match_records`,
    }
    for _, s := range stmts {
        _, err := db.Exec(s)
        require.NoError(t, err)
    }
    return db
}

// TestPair_ConcurrentJoinsFormDisjointPairs drives N concurrent
// join-then-pair sequences for one event against a real database and
// checks the hard invariants: floor(N/2) disjoint pairs, nobody in two
// rooms, at most one user left waiting.
func TestPair_ConcurrentJoinsFormDisjointPairs(t *testing.T) {
    db := setupIntegrationDB(t)

    queueRepo := repository.NewQueueRepo(db)
    pairer := NewPairer(queueRepo, repository.NewRoomRepo(db), repository.NewMatchRecordRepo(db))

    const eventID = 900
    const n = 50

    ctx := context.Background()
    var wg sync.WaitGroup
    wg.Add(n)
    for i := 1; i <= n; i++ {
        userID := uint64(i)
        go func() {
            defer wg.Done()
            if err := queueRepo.UpsertWaiting(ctx, eventID, userID); err != nil {
                t.Errorf("upsert user %d: %v", userID, err)
                return
            }
            if _, err := pairer.Pair(ctx, eventID); err != nil {
                t.Errorf("pair attempt by user %d: %v", userID, err)
            }
        }()
    }
    wg.Wait()

    // One final sweep pairs any two users whose attempts raced past
    // each other before both were in the queue.
    for {
        res, err := pairer.Pair(ctx, eventID)
        require.NoError(t, err)
        if !res.Matched {
            break
        }
    }

    rows, err := db.Query(`SELECT user_id, is_matched, current_room_id FROM queue_entries WHERE event_id = ?`, eventID)
    require.NoError(t, err)
    defer rows.Close()

    roomMembers := make(map[string][]uint64)
    waiting := 0
    total := 0
    for rows.Next() {
        var userID uint64
        var isMatched bool
        var roomID sql.NullString
        require.NoError(t, rows.Scan(&userID, &isMatched, &roomID))
        total++
        if !isMatched {
            waiting++
            continue
        }
        require.True(t, roomID.Valid, "matched user %d has no room", userID)
        roomMembers[roomID.String] = append(roomMembers[roomID.String], userID)
    }
    require.NoError(t, rows.Err())

    assert.Equal(t, n, total)
    assert.Equal(t, n%2, waiting, "at most one user may remain waiting for even/odd N")
    assert.Len(t, roomMembers, n/2)

    seen := make(map[uint64]bool)
    for roomID, members := range roomMembers {
        require.Len(t, members, 2, fmt.Sprintf("room %s does not hold exactly two users", roomID))
        assert.NotEqual(t, members[0], members[1], "self-paired user in room %s", roomID)
        for _, u := range members {
            assert.False(t, seen[u], "user %d appears in more than one room", u)
            seen[u] = true
        }
    }
}
