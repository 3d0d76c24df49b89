package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asr-benchmark-hub/backend/internal/datastore"
)

type fakeResolver struct {
	users map[string]*datastore.User
}

func (f *fakeResolver) ByID(_ context.Context, id string) (*datastore.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return u, nil
}

func testUser(id string, role datastore.Role, status datastore.Status) *datastore.User {
	return &datastore.User{ID: id, Username: id, Role: role, Status: status}
}

func newGateRouter(ts *TokenService, resolver IdentityResolver, minimum datastore.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{RequireAuth(ts, resolver)}
	if minimum != "" {
		handlers = append(handlers, RequireRole(minimum))
	}
	handlers = append(handlers, func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": u.ID})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	r := newGateRouter(ts, &fakeResolver{}, "")

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestRequireAuth_Authorized(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"u1": testUser("u1", datastore.RoleViewer, datastore.StatusActive),
	}}
	r := newGateRouter(ts, resolver, "")

	tok, err := ts.IssueAccess("u1")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"u1": testUser("u1", datastore.RoleViewer, datastore.StatusActive),
	}}
	r := newGateRouter(ts, resolver, "")

	tok, err := ts.IssueRefresh("u1")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrWrongTokenPurpose.Error())
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(-time.Second, time.Hour)
	r := newGateRouter(ts, &fakeResolver{}, "")

	tok, err := ts.IssueAccess("u1")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrTokenExpired.Error())
}

func TestRequireAuth_UnknownIdentity(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	r := newGateRouter(ts, &fakeResolver{}, "")

	tok, err := ts.IssueAccess("ghost")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrUnknownIdentity.Error())
}

func TestRequireAuth_InactiveAccount(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	for _, status := range []datastore.Status{datastore.StatusInactive, datastore.StatusSuspended} {
		resolver := &fakeResolver{users: map[string]*datastore.User{
			"u1": testUser("u1", datastore.RoleAdmin, status),
		}}
		r := newGateRouter(ts, resolver, "")

		tok, err := ts.IssueAccess("u1")
		require.NoError(t, err)

		w := doGet(r, tok)
		assert.Equal(t, http.StatusForbidden, w.Code, "status=%s", status)
		assert.Contains(t, w.Body.String(), ErrInactiveAccount.Error())
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"boss": testUser("boss", datastore.RoleAdmin, datastore.StatusActive),
	}}
	r := newGateRouter(ts, resolver, datastore.RoleEditor)

	tok, err := ts.IssueAccess("boss")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_ViewerBelowEditor(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"reader": testUser("reader", datastore.RoleViewer, datastore.StatusActive),
	}}
	r := newGateRouter(ts, resolver, datastore.RoleEditor)

	tok, err := ts.IssueAccess("reader")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), ErrInsufficientPermissions.Error())
}

func TestRequireRole_EditorMeetsEditor(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"writer": testUser("writer", datastore.RoleEditor, datastore.StatusActive),
	}}
	r := newGateRouter(ts, resolver, datastore.RoleEditor)

	tok, err := ts.IssueAccess("writer")
	require.NoError(t, err)

	w := doGet(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth_CollapsesFailuresToAnonymous(t *testing.T) {
	ts := newTestTokenService(time.Hour, time.Hour)
	resolver := &fakeResolver{users: map[string]*datastore.User{
		"u1": testUser("u1", datastore.RoleViewer, datastore.StatusActive),
	}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/maybe", OptionalAuth(ts, resolver), func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"user": u.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": "anonymous"})
	})

	// No credential: anonymous, not an error.
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Garbage credential: still anonymous.
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Valid credential: identified.
	tok, err := ts.IssueAccess("u1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}
