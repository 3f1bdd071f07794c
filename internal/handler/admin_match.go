package handler

import (
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/visually-speaking/matchmaking/internal/engine"
    "github.com/visually-speaking/matchmaking/internal/repository"
)

// AdminMatchHandler exposes the privileged matchmaking surface:
// manually triggering a pairing attempt for an event and reading its
// match history and queue counters.  Role enforcement happens in
// middleware; handlers here only validate input and shape responses.
type AdminMatchHandler struct {
    QueueRepo   *repository.QueueRepo
    RoomRepo    *repository.RoomRepo
    MatchRepo   *repository.MatchRecordRepo
    Pairer      *engine.Pairer
    Provisioner RoomProvisioner
    // announce performs the post-commit side effects of a pairing;
    // shared with the customer handler so forced matches behave the
    // same as organic ones.
    announce func(c echo.Context, eventID uint64, res *engine.PairResult) *string
}

// NewAdminMatchHandler constructs a new AdminMatchHandler.  The
// customer-facing handler is borrowed for the shared post-pairing side
// effects so that a forced match provisions and announces exactly like
// an organic one.
func NewAdminMatchHandler(mm *MatchmakingHandler, matchRepo *repository.MatchRecordRepo) *AdminMatchHandler {
    if mm == nil || matchRepo == nil {
        panic("nil dependency passed to NewAdminMatchHandler")
    }
    return &AdminMatchHandler{
        QueueRepo:   mm.QueueRepo,
        RoomRepo:    mm.RoomRepo,
        MatchRepo:   matchRepo,
        Pairer:      mm.Pairer,
        Provisioner: mm.Provisioner,
        announce: func(c echo.Context, eventID uint64, res *engine.PairResult) *string {
            return mm.provisionAndAnnounce(c.Request().Context(), eventID, res)
        },
    }
}

// ForceMatch handles POST /v1/admin/events/:id/queue/match.  It runs
// one pairing attempt for the event without joining anyone, used for
// manual triggering when organic join-time attempts have been missed.
// A result with matched: false and the not-enough-users message is a
// normal outcome, not an error.
func (h *AdminMatchHandler) ForceMatch(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    res, err := h.Pairer.Pair(c.Request().Context(), eventID)
    if err != nil {
        log.Printf("pairing: forced attempt for event %d failed: %v", eventID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"matched": false, "error": "pairing failed"})
    }
    if !res.Matched {
        return c.JSON(http.StatusOK, echo.Map{"matched": false, "error": "not enough users"})
    }
    dailyURL := h.announce(c, eventID, res)
    body := echo.Map{
        "matched": true,
        "roomId":  res.RoomID,
        "users":   []uint64{res.User1ID, res.User2ID},
    }
    if dailyURL != nil {
        body["dailyUrl"] = *dailyURL
    }
    return c.JSON(http.StatusOK, body)
}

// QueueStats handles GET /v1/events/:id/queue/stats.  It returns the
// waiting and matched entry counts plus the number of open rooms for
// an event.  The route sits behind the response cache, so the numbers
// may lag live state by the cache TTL.
func (h *AdminMatchHandler) QueueStats(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    waiting, matched, err := h.QueueRepo.CountsByEvent(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count queue entries"})
    }
    openRooms, err := h.RoomRepo.CountOpenByEvent(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count rooms"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "eventId":   eventID,
        "waiting":   waiting,
        "matched":   matched,
        "openRooms": openRooms,
    })
}

// ListMatches handles GET /v1/admin/events/:id/matches.  It returns
// the append-only match history for the event, newest first.
func (h *AdminMatchHandler) ListMatches(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    records, err := h.MatchRepo.ListByEvent(c.Request().Context(), eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load match history"})
    }
    items := make([]echo.Map, 0, len(records))
    for _, rec := range records {
        items = append(items, echo.Map{
            "id":        rec.ID,
            "eventId":   rec.EventID,
            "user1Id":   rec.User1ID,
            "user2Id":   rec.User2ID,
            "roomId":    rec.RoomID,
            "startedAt": rec.StartedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
