package common

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Fault makes the test resource API misbehave for one method and path.
type Fault struct {
	Status int
	Body   string
	Delay  time.Duration

	// Times limits how many requests fail. Zero fails every request.
	Times int
}

type record = map[string]any

// TestAPI is an in-memory stand-in for the resource API. Users live at
// /user and each user's posts at /user/:id/blogPost. Ids are issued as
// numeric strings; seeded posts may carry their own.
type TestAPI struct {
	*httptest.Server

	mu     sync.Mutex
	nextID int
	users  map[int]record
	posts  map[int][]record
	faults map[string]*Fault
	calls  map[string]int
}

func NewTestAPI(t *testing.T) *TestAPI {
	t.Helper()

	api := &TestAPI{
		users:  make(map[int]record),
		posts:  make(map[int][]record),
		faults: make(map[string]*Fault),
		calls:  make(map[string]int),
	}

	router := httprouter.New()
	router.GET("/user", api.listUsers)
	router.POST("/user", api.createUser)
	router.GET("/user/:id", api.getUser)
	router.PUT("/user/:id", api.updateUser)
	router.DELETE("/user/:id", api.deleteUser)
	router.GET("/user/:id/blogPost", api.listPosts)
	router.POST("/user/:id/blogPost", api.createPost)
	router.PUT("/user/:id/blogPost/:postId", api.updatePost)
	router.DELETE("/user/:id/blogPost/:postId", api.deletePost)

	api.Server = httptest.NewServer(api.inject(router))
	t.Cleanup(api.Close)

	return api
}

// TestAPIClient returns a client for api with millisecond retry delays.
func TestAPIClient(t *testing.T, api *TestAPI) *APIClient {
	t.Helper()

	policy := DefaultRetryPolicy()
	policy.InitialDelay = time.Millisecond

	client, err := NewAPIClient(APIConfig{BaseURL: api.URL, Timeout: 2 * time.Second, Retry: policy}, DiscardLogger(), NewTestMetrics())
	if err != nil {
		t.Fatalf("could not create api client: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (api *TestAPI) Fail(method, path string, f Fault) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.faults[method+" "+path] = &f
}

// Calls returns how many requests reached method and path, faults included.
func (api *TestAPI) Calls(method, path string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.calls[method+" "+path]
}

func (api *TestAPI) SeedUser(fields record) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	id := api.issueID()
	u := clone(fields)
	u["id"] = strconv.Itoa(id)
	api.users[id] = u
	api.posts[id] = []record{}

	return u["id"].(string)
}

// SeedPost stores a post for userID. A string "id" in fields is kept as
// the post id; otherwise one is issued.
func (api *TestAPI) SeedPost(userID string, fields record) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	uid, _ := strconv.Atoi(userID)

	p := clone(fields)
	if id, ok := p["id"].(string); !ok || id == "" {
		p["id"] = strconv.Itoa(api.issueID())
	}
	if _, ok := p["userId"]; !ok {
		p["userId"] = userID
	}
	api.posts[uid] = append(api.posts[uid], p)

	return p["id"].(string)
}

func (api *TestAPI) User(id string) (record, bool) {
	api.mu.Lock()
	defer api.mu.Unlock()

	n, _ := strconv.Atoi(id)
	u, ok := api.users[n]
	return clone(u), ok
}

func (api *TestAPI) Post(userID, postID string) (record, bool) {
	api.mu.Lock()
	defer api.mu.Unlock()

	uid, _ := strconv.Atoi(userID)
	i := findPost(api.posts[uid], postID)
	if i < 0 {
		return nil, false
	}
	return clone(api.posts[uid][i]), true
}

func (api *TestAPI) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		api.mu.Lock()
		api.calls[key]++
		f, ok := api.faults[key]
		var fault Fault
		if ok {
			fault = *f
			if f.Times > 0 {
				f.Times--
				if f.Times == 0 {
					delete(api.faults, key)
				}
			}
		}
		api.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if fault.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fault.Status)
		io.WriteString(w, fault.Body)
	})
}

func (api *TestAPI) listUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.mu.Lock()
	defer api.mu.Unlock()

	email := strings.ToLower(r.URL.Query().Get("email"))

	out := []record{}
	for _, id := range sortedKeys(api.users) {
		u := api.users[id]
		if email != "" {
			e, _ := u["email"].(string)
			if !strings.Contains(strings.ToLower(e), email) {
				continue
			}
		}
		out = append(out, u)
	}

	writeTestJSON(w, http.StatusOK, out)
}

func (api *TestAPI) createUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := readTestBody(w, r)
	if !ok {
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	id := api.issueID()
	body["id"] = strconv.Itoa(id)
	api.users[id] = body
	api.posts[id] = []record{}

	writeTestJSON(w, http.StatusCreated, body)
}

func (api *TestAPI) getUser(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	api.mu.Lock()
	defer api.mu.Unlock()

	u, ok := api.users[atoi(ps.ByName("id"))]
	if !ok {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	writeTestJSON(w, http.StatusOK, u)
}

func (api *TestAPI) updateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, ok := readTestBody(w, r)
	if !ok {
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	u, ok := api.users[atoi(ps.ByName("id"))]
	if !ok {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	for k, v := range body {
		if k != "id" {
			u[k] = v
		}
	}

	writeTestJSON(w, http.StatusOK, u)
}

func (api *TestAPI) deleteUser(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	api.mu.Lock()
	defer api.mu.Unlock()

	id := atoi(ps.ByName("id"))
	u, ok := api.users[id]
	if !ok {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	delete(api.users, id)
	delete(api.posts, id)

	writeTestJSON(w, http.StatusOK, u)
}

func (api *TestAPI) listPosts(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	api.mu.Lock()
	defer api.mu.Unlock()

	posts, ok := api.posts[atoi(ps.ByName("id"))]
	if !ok {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	writeTestJSON(w, http.StatusOK, append([]record{}, posts...))
}

func (api *TestAPI) createPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, ok := readTestBody(w, r)
	if !ok {
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	uid := atoi(ps.ByName("id"))
	if _, ok := api.posts[uid]; !ok {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	body["id"] = strconv.Itoa(api.issueID())
	body["userId"] = ps.ByName("id")
	api.posts[uid] = append(api.posts[uid], body)

	writeTestJSON(w, http.StatusCreated, body)
}

func (api *TestAPI) updatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	body, ok := readTestBody(w, r)
	if !ok {
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	posts := api.posts[atoi(ps.ByName("id"))]
	i := findPost(posts, ps.ByName("postId"))
	if i < 0 {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	p := posts[i]

	for k, v := range body {
		if k != "id" && k != "userId" {
			p[k] = v
		}
	}

	writeTestJSON(w, http.StatusOK, p)
}

func (api *TestAPI) deletePost(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	api.mu.Lock()
	defer api.mu.Unlock()

	uid := atoi(ps.ByName("id"))
	posts := api.posts[uid]
	i := findPost(posts, ps.ByName("postId"))
	if i < 0 {
		writeTestJSON(w, http.StatusNotFound, "Not found")
		return
	}

	p := posts[i]
	api.posts[uid] = slices.Delete(posts, i, i+1)

	writeTestJSON(w, http.StatusOK, p)
}

func (api *TestAPI) issueID() int {
	api.nextID++
	return api.nextID
}

func readTestBody(w http.ResponseWriter, r *http.Request) (record, bool) {
	var body record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeTestJSON(w, http.StatusBadRequest, record{"message": fmt.Sprintf("invalid body: %v", err)})
		return nil, false
	}
	return body, true
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func findPost(posts []record, id string) int {
	return slices.IndexFunc(posts, func(p record) bool { return p["id"] == id })
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func clone(r record) record {
	if r == nil {
		return nil
	}
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
