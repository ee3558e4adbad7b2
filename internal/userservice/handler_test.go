package userservice

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/traveltales/journal/internal/common"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

func strptr(s string) *string {
	return &s
}

func setupTestEnvironment(t *testing.T) (*UserService, *common.TestAPI) {
	t.Helper()

	api := common.NewTestAPI(t)
	client := common.TestAPIClient(t, api)
	sessions := NewSessionStore(common.NewCache(time.Hour, time.Hour), time.Hour)

	return NewUserService(client, sessions, common.DiscardLogger()), api
}

func seedAlice(api *common.TestAPI) string {
	return api.SeedUser(map[string]any{
		"name":      "Alice A",
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"favorites": []any{},
		"followers": []any{},
		"following": []any{},
	})
}

func TestLogin(t *testing.T) {
	s, api := setupTestEnvironment(t)
	id := seedAlice(api)
	api.SeedUser(map[string]any{"username": "malice", "email": "malice@example.com", "password": "other123"})

	testCases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "alice@example.com", password: "secret123"},
		{name: "email case differs", email: "ALICE@example.com", password: "secret123"},
		{name: "wrong password", email: "alice@example.com", password: "secret124", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: "secret123", wantErr: ErrInvalidCredentials},
		{name: "substring match only", email: "lice@example.com", password: "secret123", wantErr: ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, session, err := s.Login(context.Background(), tc.email, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, u.ID.String())
			assert.Equal(t, "alice", u.Username)

			got, err := s.GetUserBySessionToken(session.Token)
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	s, _ := setupTestEnvironment(t)

	_, _, err := s.Login(context.Background(), "", "")
	var vErr common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be provided", vErr.Errors["email"])
	assert.Equal(t, "must be provided", vErr.Errors["password"])
}

func TestRegister(t *testing.T) {
	s, api := setupTestEnvironment(t)
	seedAlice(api)

	now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	testCases := []struct {
		name      string
		req       RegisterRequest
		wantErr   error
		wantField string
	}{
		{
			name: "valid user",
			req:  RegisterRequest{Name: "Bob B", Username: "bob_b", Email: "bob@example.com", Password: "hunter22"},
		},
		{
			name:    "duplicate username",
			req:     RegisterRequest{Name: "Alice", Username: "ALICE", Email: "new@example.com", Password: "hunter22"},
			wantErr: ErrDuplicateUsername,
		},
		{
			name:    "duplicate email",
			req:     RegisterRequest{Name: "Alice", Username: "alice2", Email: "Alice@Example.com", Password: "hunter22"},
			wantErr: ErrDuplicateEmail,
		},
		{
			name:      "short username",
			req:       RegisterRequest{Name: "Al", Username: "al", Email: "al@example.com", Password: "hunter22"},
			wantField: "username",
		},
		{
			name:      "missing name",
			req:       RegisterRequest{Username: "nobody", Email: "nobody@example.com", Password: "hunter22"},
			wantField: "name",
		},
		{
			name:      "short password",
			req:       RegisterRequest{Name: "Carol", Username: "carol", Email: "carol@example.com", Password: "abc"},
			wantField: "password",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, session, err := s.Register(context.Background(), tc.req)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantField != "":
				var vErr common.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Contains(t, vErr.Errors, tc.wantField)
			default:
				require.NoError(t, err)
				assert.True(t, u.ID.Valid())
				assert.Equal(t, "2024-05-01T12:00:00.000Z", u.CreatedAt)
				assert.Equal(t, []string{}, u.Favorites)
				assert.Equal(t, []string{}, u.Followers)
				assert.Equal(t, []string{}, u.Following)
				assert.NotEmpty(t, session.Token)

				stored, ok := api.User(u.ID.String())
				require.True(t, ok)
				assert.Equal(t, "hunter22", stored["password"])
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	s, api := setupTestEnvironment(t)
	id := seedAlice(api)

	u, err := s.GetUser(context.Background(), common.ID(atoiTest(t, id)))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "secret123", u.Password)

	_, err = s.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUser(context.Background(), 0)
	var vErr common.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetUserByUsername(t *testing.T) {
	s, api := setupTestEnvironment(t)
	seedAlice(api)

	u, err := s.GetUserByUsername(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUsers(t *testing.T) {
	s, api := setupTestEnvironment(t)
	seedAlice(api)
	api.SeedUser(map[string]any{"username": "bob", "favorites": nil, "following": []any{1, "2"}})

	users, err := s.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []string{}, users[1].Favorites)
	assert.Equal(t, []string{"1", "2"}, users[1].Following)
}

func TestUpdateUser(t *testing.T) {
	s, api := setupTestEnvironment(t)
	id := seedAlice(api)
	api.SeedUser(map[string]any{"username": "bob", "email": "bob@example.com"})
	uid := common.ID(atoiTest(t, id))

	_, session, err := s.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	testCases := []struct {
		name    string
		req     UpdateUserRequest
		wantErr error
		check   func(t *testing.T, u *User)
	}{
		{
			name: "bio and name",
			req:  UpdateUserRequest{Name: strptr("Alice Liddell"), Bio: strptr("  Wanderer  ")},
			check: func(t *testing.T, u *User) {
				assert.Equal(t, "Alice Liddell", u.Name)
				assert.Equal(t, "Wanderer", u.Bio)
				assert.Equal(t, "alice@example.com", u.Email)
				assert.Equal(t, "secret123", u.Password)
			},
		},
		{
			name: "password",
			req:  UpdateUserRequest{Password: strptr("newsecret")},
			check: func(t *testing.T, u *User) {
				assert.Equal(t, "newsecret", u.Password)
			},
		},
		{
			name:    "email taken",
			req:     UpdateUserRequest{Email: strptr("BOB@example.com")},
			wantErr: ErrDuplicateEmail,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := s.UpdateUser(context.Background(), uid, tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, u)

			cached, err := s.GetUserBySessionToken(session.Token)
			require.NoError(t, err)
			assert.Equal(t, u.Name, cached.Name)
		})
	}

	_, err = s.UpdateUser(context.Background(), uid, UpdateUserRequest{Email: strptr("not-an-email")})
	var vErr common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be a valid email address", vErr.Errors["email"])

	_, err = s.UpdateUser(context.Background(), 999, UpdateUserRequest{Name: strptr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	s, api := setupTestEnvironment(t)
	id := seedAlice(api)

	_, session, err := s.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	err = s.DeleteUser(context.Background(), common.ID(atoiTest(t, id)))
	require.NoError(t, err)

	_, ok := api.User(id)
	assert.False(t, ok)

	_, err = s.GetUserBySessionToken(session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = s.DeleteUser(context.Background(), common.ID(atoiTest(t, id)))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	s, api := setupTestEnvironment(t)
	uid := common.ID(atoiTest(t, seedAlice(api)))

	u, err := s.ToggleFavorite(context.Background(), uid, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, u.Favorites)

	u, err = s.ToggleFavorite(context.Background(), uid, "43")
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "43"}, u.Favorites)

	u, err = s.ToggleFavorite(context.Background(), uid, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"43"}, u.Favorites)

	_, err = s.ToggleFavorite(context.Background(), uid, "")
	var vErr common.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestToggleFollow(t *testing.T) {
	s, api := setupTestEnvironment(t)
	alice := seedAlice(api)
	bob := api.SeedUser(map[string]any{"username": "bob", "email": "bob@example.com", "followers": []any{}, "following": []any{}})
	aliceID := common.ID(atoiTest(t, alice))

	viewer, following, err := s.ToggleFollow(context.Background(), aliceID, "bob")
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, []string{"bob"}, viewer.Following)

	stored, _ := api.User(bob)
	assert.Equal(t, []any{"alice"}, stored["followers"])

	viewer, following, err = s.ToggleFollow(context.Background(), aliceID, "bob")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, []string{}, viewer.Following)

	stored, _ = api.User(bob)
	assert.Equal(t, []any{}, stored["followers"])

	_, _, err = s.ToggleFollow(context.Background(), aliceID, "alice")
	assert.ErrorIs(t, err, ErrFollowSelf)

	_, _, err = s.ToggleFollow(context.Background(), aliceID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFollow_RevertsOnFailure(t *testing.T) {
	s, api := setupTestEnvironment(t)
	alice := seedAlice(api)
	bob := api.SeedUser(map[string]any{"username": "bob", "email": "bob@example.com"})

	api.Fail(http.MethodPut, "/user/"+bob, common.Fault{Status: http.StatusInternalServerError})

	_, _, err := s.ToggleFollow(context.Background(), common.ID(atoiTest(t, alice)), "bob")

	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	stored, _ := api.User(alice)
	assert.Equal(t, []any{}, stored["following"])
	assert.Equal(t, 2, api.Calls(http.MethodPut, "/user/"+alice))
}

func TestToggleFollow_InconsistentLists(t *testing.T) {
	testCases := []struct {
		name          string
		following     []any
		followers     []any
		wantFollowing bool
		wantViewer    []any
		wantTarget    []any
	}{
		{
			name:          "unfollow with missing follower entry",
			following:     []any{"bob"},
			followers:     []any{},
			wantFollowing: false,
			wantViewer:    []any{},
			wantTarget:    []any{},
		},
		{
			name:          "follow with stale follower entry",
			following:     []any{},
			followers:     []any{"alice"},
			wantFollowing: true,
			wantViewer:    []any{"bob"},
			wantTarget:    []any{"alice"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, api := setupTestEnvironment(t)
			alice := api.SeedUser(map[string]any{"username": "alice", "email": "alice@example.com", "following": tc.following})
			bob := api.SeedUser(map[string]any{"username": "bob", "email": "bob@example.com", "followers": tc.followers})

			_, following, err := s.ToggleFollow(context.Background(), common.ID(atoiTest(t, alice)), "bob")
			require.NoError(t, err)
			assert.Equal(t, tc.wantFollowing, following)

			storedAlice, _ := api.User(alice)
			storedBob, _ := api.User(bob)
			assert.Equal(t, tc.wantViewer, storedAlice["following"])
			assert.Equal(t, tc.wantTarget, storedBob["followers"])
		})
	}
}

func TestIsAnonymous(t *testing.T) {
	assert.True(t, IsAnonymous(&AnonymousUser))
	assert.False(t, IsAnonymous(&User{}))
}

func atoiTest(t *testing.T, s string) int {
	t.Helper()
	id, err := common.ParseID(s)
	require.NoError(t, err)
	return int(id)
}
