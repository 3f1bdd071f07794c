package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/visually-speaking/matchmaking/internal/engine"
    "github.com/visually-speaking/matchmaking/internal/queue"
    "github.com/visually-speaking/matchmaking/internal/repository"
    queue_publisher "github.com/visually-speaking/matchmaking/internal/service"
)

// MatchmakingHandler groups the repositories and collaborators needed
// to drive the per-event matchmaking queue on behalf of customers.
// All methods assume that JWT authentication and role validation has
// already been performed by middleware.  Methods may return 401
// Unauthorized if the user ID cannot be extracted from the context.
// Pairing itself is delegated to the engine, which owns the atomic
// critical section; handlers only validate input, invoke it and shape
// responses.
type MatchmakingHandler struct {
    QueueRepo   *repository.QueueRepo       // queue membership and status
    RoomRepo    *repository.RoomRepo        // room lookups and provider URL updates
    TicketRepo  *repository.TicketRepo      // active-ticket precondition for join
    Pairer      *engine.Pairer              // atomic pair selection
    Provisioner RoomProvisioner             // external video-room provider
}

// NewMatchmakingHandler constructs a new MatchmakingHandler with the
// provided dependencies.  All of them must be non-nil.
func NewMatchmakingHandler(queueRepo *repository.QueueRepo, roomRepo *repository.RoomRepo, ticketRepo *repository.TicketRepo, pairer *engine.Pairer, provisioner RoomProvisioner) *MatchmakingHandler {
    if queueRepo == nil || roomRepo == nil || ticketRepo == nil || pairer == nil || provisioner == nil {
        panic("nil dependency passed to NewMatchmakingHandler")
    }
    return &MatchmakingHandler{
        QueueRepo:   queueRepo,
        RoomRepo:    roomRepo,
        TicketRepo:  ticketRepo,
        Pairer:      pairer,
        Provisioner: provisioner,
    }
}

// provisionAndAnnounce performs the post-commit side effects of a
// successful pairing: create the provider room, store its URL, and
// publish the match.created event.  Provisioning failure is logged and
// leaves the pairing intact with no URL; the event is published either
// way so downstream consumers see every match.  The returned pointer
// is nil when no URL is available.
func (h *MatchmakingHandler) provisionAndAnnounce(ctx context.Context, eventID uint64, res *engine.PairResult) *string {
    var dailyURL *string
    url, err := h.Provisioner.CreateRoom(ctx, res.RoomID)
    if err != nil {
        log.Printf("pairing: provisioning room %s failed: %v", res.RoomID, err)
    } else {
        if err := h.RoomRepo.SetProviderURL(ctx, res.RoomID, url); err != nil {
            log.Printf("pairing: storing provider url for room %s failed: %v", res.RoomID, err)
        }
        dailyURL = &url
    }

    ev := queue.MatchCreatedEvent{
        EventID:   eventID,
        RoomID:    res.RoomID,
        User1ID:   res.User1ID,
        User2ID:   res.User2ID,
        MatchedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if dailyURL != nil {
        ev.DailyURL = *dailyURL
    }
    // Publish best effort in the background; the request must not wait
    // on the broker.
    go func() {
        pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishMatchCreated(pubCtx, ev)
    }()

    return dailyURL
}

// matchResponse shapes the common join/next-match response body.  The
// dailyUrl key is present only when provisioning succeeded.
func matchResponse(res *engine.PairResult, dailyURL *string) echo.Map {
    if !res.Matched {
        return echo.Map{"success": true, "status": "waiting", "matched": false}
    }
    body := echo.Map{
        "success": true,
        "status":  "matched",
        "matched": true,
        "roomId":  res.RoomID,
    }
    if dailyURL != nil {
        body["dailyUrl"] = *dailyURL
    }
    return body
}

// Join handles POST /v1/events/:id/queue/join.  The caller must hold
// an active ticket for the event.  Their queue entry is created (or
// reset to waiting), then one pairing attempt runs.  When the attempt
// pairs the caller a room is provisioned and the response carries the
// room ID and join URL; otherwise the caller is left waiting.  Joining
// while already waiting simply refreshes the wait timestamp.
func (h *MatchmakingHandler) Join(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    ok, err := h.TicketRepo.HasActiveTicket(ctx, userID, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify ticket"})
    }
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "no active ticket for event"})
    }
    if err := h.QueueRepo.UpsertWaiting(ctx, eventID, userID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to join queue"})
    }
    res, err := h.Pairer.Pair(ctx, eventID)
    if err != nil {
        // The caller is in the queue; the failed attempt rolled back
        // fully and they can retry or wait for another join to pair them.
        log.Printf("pairing: attempt for event %d failed: %v", eventID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pairing failed"})
    }
    var dailyURL *string
    if res.Matched {
        dailyURL = h.provisionAndAnnounce(ctx, eventID, res)
    }
    return c.JSON(http.StatusOK, matchResponse(res, dailyURL))
}

// Leave handles POST /v1/events/:id/queue/leave.  It removes the
// caller's queue entry if present.  Leaving a queue the caller is not
// in succeeds with no effect, so retries are harmless.
func (h *MatchmakingHandler) Leave(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    if err := h.QueueRepo.Remove(c.Request().Context(), eventID, userID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to leave queue"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Status handles GET /v1/events/:id/queue/status.  It reports whether
// the caller is not in the queue, waiting, or matched.  For a matched
// caller the room ID is included, plus the join URL when provisioning
// has succeeded; a matched status without dailyUrl means the room
// exists but the provider call failed and may be retried.
func (h *MatchmakingHandler) Status(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    rec, err := h.QueueRepo.GetStatus(ctx, eventID, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusOK, echo.Map{"status": "not_in_queue"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch status"})
    }
    if !rec.IsMatched || rec.CurrentRoomID == nil {
        return c.JSON(http.StatusOK, echo.Map{"status": "waiting"})
    }
    body := echo.Map{
        "status": "matched",
        "roomId": *rec.CurrentRoomID,
    }
    if room, err := h.RoomRepo.GetByID(ctx, *rec.CurrentRoomID); err == nil && room.ProviderURL != nil {
        body["dailyUrl"] = *room.ProviderURL
    }
    return c.JSON(http.StatusOK, body)
}

// NextMatch handles POST /v1/events/:id/queue/next.  After finishing a
// chat the caller asks to be re-paired: their entry is reset to the
// waiting state (clearing the previous room association; the old room
// itself is left alone) and one pairing attempt runs.  The ticket
// precondition is enforced here as well because the reset can create a
// queue entry for a caller who never joined.
func (h *MatchmakingHandler) NextMatch(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    ok, err := h.TicketRepo.HasActiveTicket(ctx, userID, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify ticket"})
    }
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "no active ticket for event"})
    }
    if err := h.QueueRepo.UpsertWaiting(ctx, eventID, userID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to rejoin queue"})
    }
    res, err := h.Pairer.Pair(ctx, eventID)
    if err != nil {
        log.Printf("pairing: attempt for event %d failed: %v", eventID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pairing failed"})
    }
    var dailyURL *string
    if res.Matched {
        dailyURL = h.provisionAndAnnounce(ctx, eventID, res)
    }
    return c.JSON(http.StatusOK, matchResponse(res, dailyURL))
}

// Reprovision handles POST /v1/events/:id/queue/room/provision.  When
// the best-effort provider call after pairing failed, a matched caller
// can retry it here for their current room.  If the room already has a
// URL it is returned as-is; provisioning is idempotent on the provider
// side because the room name is the room ID.
func (h *MatchmakingHandler) Reprovision(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    rec, err := h.QueueRepo.GetStatus(ctx, eventID, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not in queue"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch status"})
    }
    if !rec.IsMatched || rec.CurrentRoomID == nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "not matched into a room"})
    }
    room, err := h.RoomRepo.GetByID(ctx, *rec.CurrentRoomID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch room"})
    }
    if room.ProviderURL != nil {
        return c.JSON(http.StatusOK, echo.Map{"success": true, "roomId": room.ID, "dailyUrl": *room.ProviderURL})
    }
    url, err := h.Provisioner.CreateRoom(ctx, room.ID)
    if err != nil {
        log.Printf("pairing: reprovisioning room %s failed: %v", room.ID, err)
        return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "provisioning failed"})
    }
    if err := h.RoomRepo.SetProviderURL(ctx, room.ID, url); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store provider url"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "roomId": room.ID, "dailyUrl": url})
}
