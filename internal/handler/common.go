package handler // handler defines http handlers

import (
    "context"
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

// RoomProvisioner is the contract consumed from the external video
// provider: create a real room for the given identifier and return its
// join URL.  Calls may be slow or fail; callers must treat failures as
// non-fatal because the pairing has already committed by the time a
// room is provisioned.
type RoomProvisioner interface {
    CreateRoom(ctx context.Context, roomID string) (string, error)
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// eventIDParam parses the :id path parameter as an event identifier.
// Zero and non-numeric values are rejected so no store access happens
// for malformed input.
func eventIDParam(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid event id")
    }
    return id, nil
}
