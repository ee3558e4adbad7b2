package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/traveltales/journal/internal/common"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig(apiURL string) *Config {
	return &Config{
		Port:                  ":0",
		Environment:           "development",
		Version:               "test",
		LogLevel:              "info",
		LogFormat:             "text",
		APIBaseURL:            apiURL,
		APITimeout:            2 * time.Second,
		RetryMax:              1,
		RetryInitialDelay:     time.Millisecond,
		RetryMultiplier:       1.5,
		RetryValidationErrors: true,
		SessionTTL:            time.Hour,
		LimiterEnabled:        false,
		LimiterRPS:            4,
		LimiterBurst:          8,
	}
}

func newTestApplication(t *testing.T) (*application, *common.TestAPI) {
	t.Helper()

	api := common.NewTestAPI(t)

	app, err := newApplication(testConfig(api.URL), common.DiscardLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(app.api.Close)

	return app, api
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, token *string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// seedUser stores a user with a known password in the resource API.
func seedUser(api *common.TestAPI, name, username, email string) string {
	return api.SeedUser(map[string]any{
		"name":      name,
		"username":  username,
		"email":     email,
		"password":  "Test_1234!",
		"favorites": []any{},
		"followers": []any{},
		"following": []any{},
	})
}

func (ts *testServer) login(t *testing.T, email string) *string {
	t.Helper()

	status, _, body := ts.post(t, "/v1/auth/login", nil, map[string]any{"email": email, "password": "Test_1234!"})
	require.Equal(t, http.StatusOK, status, body)

	token, ok := body["token"].(string)
	require.True(t, ok)
	return &token
}
