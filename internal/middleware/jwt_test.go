package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    s, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    return s
}

func runAuthed(t *testing.T, mw echo.MiddlewareFunc, authHeader string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/events/5/queue/status", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    require.NoError(t, mw(fn)(c))
    return rec
}

func TestJWTAuth_ValidTokenSetsIdentity(t *testing.T) {
    mw := JWTAuth(testSecret)
    token := signToken(t, testSecret, jwt.MapClaims{"sub": "101", "role": "CUSTOMER"})

    var gotUser, gotRole interface{}
    rec := runAuthed(t, mw, "Bearer "+token, func(c echo.Context) error {
        gotUser = c.Get("user_id")
        gotRole = c.Get("role")
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    })
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "101", gotUser)
    assert.Equal(t, "CUSTOMER", gotRole)
}

func TestJWTAuth_MissingHeaderRejected(t *testing.T) {
    mw := JWTAuth(testSecret)
    rec := runAuthed(t, mw, "", okHandler)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuth_WrongSecretRejected(t *testing.T) {
    mw := JWTAuth(testSecret)
    token := signToken(t, "some-other-secret", jwt.MapClaims{"sub": "101", "role": "CUSTOMER"})
    rec := runAuthed(t, mw, "Bearer "+token, okHandler)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuth_NonHMACAlgorithmRejected(t *testing.T) {
    mw := JWTAuth(testSecret)
    tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "101", "role": "ADMIN"})
    s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)

    rec := runAuthed(t, mw, "Bearer "+s, okHandler)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
    mw := RequireRole("CUSTOMER", "ADMIN")

    cases := []struct {
        name string
        role interface{}
        want int
    }{
        {"customer allowed", "CUSTOMER", http.StatusOK},
        {"admin allowed", "ADMIN", http.StatusOK},
        {"other role rejected", "GUEST", http.StatusForbidden},
        {"missing role rejected", nil, http.StatusForbidden},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            e := echo.New()
            rec := httptest.NewRecorder()
            c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
            if tc.role != nil {
                c.Set("role", tc.role)
            }
            require.NoError(t, mw(okHandler)(c))
            assert.Equal(t, tc.want, rec.Code)
        })
    }
}
