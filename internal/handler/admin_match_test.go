package handler

import (
    "net/http"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"

    "github.com/visually-speaking/matchmaking/internal/repository"
)

func newAdminFixture(t *testing.T) (*AdminMatchHandler, *handlerFixture) {
    t.Helper()
    f := newFixture(t)
    matchRepo := repository.NewMatchRecordRepo(f.handler.QueueRepo.DB())
    return NewAdminMatchHandler(f.handler, matchRepo), f
}

func TestForceMatch_NotEnoughUsers(t *testing.T) {
    admin, f := newAdminFixture(t)
    f.mock.ExpectBegin()
    f.mock.ExpectQuery("FOR UPDATE").WillReturnRows(queueRows())
    f.mock.ExpectRollback()

    rec, body := doRequest(t, http.MethodPost, "/v1/admin/events/5/queue/match", "5", 1, admin.ForceMatch)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, false, body["matched"])
    assert.Equal(t, "not enough users", body["error"])
}

func TestForceMatch_PairsAndProvisions(t *testing.T) {
    admin, f := newAdminFixture(t)
    expectSuccessfulPairing(f.mock, 5, 101, 202)
    f.mock.ExpectExec("UPDATE rooms").WillReturnResult(sqlmock.NewResult(0, 1))

    rec, body := doRequest(t, http.MethodPost, "/v1/admin/events/5/queue/match", "5", 1, admin.ForceMatch)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, true, body["matched"])
    assert.NotEmpty(t, body["roomId"])
    assert.Equal(t, "https://vs.daily.co/room", body["dailyUrl"])
    assert.Len(t, body["users"], 2)
}

func TestQueueStats(t *testing.T) {
    admin, f := newAdminFixture(t)
    f.mock.ExpectQuery("FROM queue_entries").
        WithArgs(int64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"waiting", "matched"}).AddRow(3, 8))
    f.mock.ExpectQuery("FROM rooms").
        WithArgs(int64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

    rec, body := doRequest(t, http.MethodGet, "/v1/events/5/queue/stats", "5", 1, admin.QueueStats)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, float64(3), body["waiting"])
    assert.Equal(t, float64(8), body["matched"])
    assert.Equal(t, float64(4), body["openRooms"])
}

func TestListMatches(t *testing.T) {
    admin, f := newAdminFixture(t)
    started := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
    f.mock.ExpectQuery("FROM match_records").
        WithArgs(int64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user1_id", "user2_id", "room_id", "started_at"}).
            AddRow(2, 5, 101, 202, "room-2", started.Add(time.Minute)).
            AddRow(1, 5, 303, 404, "room-1", started))

    rec, body := doRequest(t, http.MethodGet, "/v1/admin/events/5/matches", "5", 1, admin.ListMatches)
    assert.Equal(t, http.StatusOK, rec.Code)
    items, ok := body["items"].([]interface{})
    assert.True(t, ok)
    assert.Len(t, items, 2)
    first := items[0].(map[string]interface{})
    assert.Equal(t, "room-2", first["roomId"])
    assert.Equal(t, "2026-03-01T20:01:00Z", first["startedAt"])
}
