package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-dayreport/internal/auth"
	"ms-dayreport/internal/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, caps []string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if caps != nil {
		capList := make([]interface{}, len(caps))
		for i, c := range caps {
			capList[i] = c
		}
		claims["caps"] = capList
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestActorFromToken_ExtractsSubjectAndCapabilities(t *testing.T) {
	token := signToken(t, "admin-1", []string{"view_day_reports", "manage_events"})

	actor, err := auth.ActorFromToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "admin-1", actor.UserID)
	assert.True(t, actor.Can("view_day_reports"))
	assert.True(t, actor.Can("manage_events"))
	assert.False(t, actor.Can("delete_everything"))
}

func TestActorFromToken_RejectsWrongSecret(t *testing.T) {
	token := signToken(t, "admin-1", nil)

	_, err := auth.ActorFromToken(token, "different-secret")
	assert.Error(t, err)
}

func TestActorFromToken_RejectsEmptyToken(t *testing.T) {
	_, err := auth.ActorFromToken("", testSecret)
	assert.Error(t, err)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFromContext(r.Context())
		w.Write([]byte(actor.UserID))
	})
}

func TestMiddleware_PassesVerifiedActorThrough(t *testing.T) {
	log := logger.NewLogger()
	handler := auth.Middleware(testSecret, log)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", []string{"view_day_reports"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", rec.Body.String())
}

func TestMiddleware_MissingHeaderRejected(t *testing.T) {
	log := logger.NewLogger()
	handler := auth.Middleware(testSecret, log)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestMiddleware_BadTokenGetsSameBodyAsMissingCapability(t *testing.T) {
	log := logger.NewLogger()

	badTokenReq := httptest.NewRequest("GET", "/", nil)
	badTokenReq.Header.Set("Authorization", "Bearer not-a-jwt")
	badTokenRec := httptest.NewRecorder()
	auth.Middleware(testSecret, log)(okHandler()).ServeHTTP(badTokenRec, badTokenReq)

	chain := auth.Middleware(testSecret, log)(
		auth.RequireCapability("view_day_reports", log)(okHandler()))
	noCapReq := httptest.NewRequest("GET", "/", nil)
	noCapReq.Header.Set("Authorization", "Bearer "+signToken(t, "admin-2", []string{"unrelated_cap"}))
	noCapRec := httptest.NewRecorder()
	chain.ServeHTTP(noCapRec, noCapReq)

	// The two rejections must be indistinguishable to the caller.
	assert.Equal(t, badTokenRec.Code, noCapRec.Code)
	assert.JSONEq(t, stripTimestamp(t, badTokenRec.Body.String()), stripTimestamp(t, noCapRec.Body.String()))
}

func TestRequireCapability_AllowsHolders(t *testing.T) {
	log := logger.NewLogger()
	chain := auth.Middleware(testSecret, log)(
		auth.RequireCapability("view_day_reports", log)(okHandler()))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", []string{"view_day_reports"}))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// stripTimestamp zeroes the response envelope's timestamp so two rejection
// bodies can be compared structurally.
func stripTimestamp(t *testing.T, body string) string {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	delete(decoded, "timestamp")
	out, err := json.Marshal(decoded)
	require.NoError(t, err)
	return string(out)
}
