package stubapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStub(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	stub := NewServer(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	return stub, srv
}

func post(t *testing.T, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

const validRegistration = `{"name":"Jane","regNo":"REG1","email":"jane@example.com"}`

func register(t *testing.T, srv *httptest.Server) (webhook, token string) {
	t.Helper()
	resp, body := post(t, srv.URL+RegisterPath, "", validRegistration)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["webhook"].(string), body["accessToken"].(string)
}

func TestRegister(t *testing.T) {
	_, srv := newTestStub(t, Options{})

	resp, body := post(t, srv.URL+RegisterPath, "", validRegistration)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, srv.URL+WebhookPath, body["webhook"])
	assert.NotEmpty(t, body["accessToken"])
	users := body["data"].(map[string]any)["users"].([]any)
	assert.Len(t, users, len(DefaultUsers()))
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	_, srv := newTestStub(t, Options{})

	for _, body := range []string{`nope`, `{"name":"Jane","regNo":"REG1","email":"not-an-email"}`, `{}`} {
		resp, decoded := post(t, srv.URL+RegisterPath, "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.NotEmpty(t, decoded["error"])
	}
}

func TestRegisterOmitUsers(t *testing.T) {
	_, srv := newTestStub(t, Options{OmitUsers: true})

	_, body := post(t, srv.URL+RegisterPath, "", validRegistration)

	assert.NotContains(t, body, "data")
}

func TestWebhook(t *testing.T) {
	t.Run("rejects unknown token", func(t *testing.T) {
		stub, srv := newTestStub(t, Options{})
		webhook, _ := register(t, srv)

		resp, _ := post(t, webhook, "wrong", `{"regNo":"REG1","outcome":[]}`)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 0, stub.Deliveries())
	})

	t.Run("accepts outcome", func(t *testing.T) {
		stub, srv := newTestStub(t, Options{})
		webhook, token := register(t, srv)

		resp, body := post(t, webhook, token, `{"regNo":"REG1","outcome":[[1,2],[2,3]]}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		subs := stub.Submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, "REG1", subs[0].RegNo)
		assert.Equal(t, [][2]int{{1, 2}, {2, 3}}, subs[0].Outcome)
		assert.True(t, subs[0].Correct)
	})

	t.Run("rejects non canonical pairs", func(t *testing.T) {
		_, srv := newTestStub(t, Options{})
		webhook, token := register(t, srv)

		resp, _ := post(t, webhook, token, `{"regNo":"REG1","outcome":[[2,1]]}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects mismatched regNo", func(t *testing.T) {
		_, srv := newTestStub(t, Options{})
		webhook, token := register(t, srv)

		resp, _ := post(t, webhook, token, `{"regNo":"OTHER","outcome":[]}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("fails first deliveries", func(t *testing.T) {
		stub, srv := newTestStub(t, Options{FailFirst: 2})
		webhook, token := register(t, srv)

		for i := 0; i < 2; i++ {
			resp, _ := post(t, webhook, token, `{"regNo":"REG1","outcome":[]}`)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		}
		resp, _ := post(t, webhook, token, `{"regNo":"REG1","outcome":[]}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, stub.Deliveries())
		assert.Len(t, stub.Submissions(), 1)
	})
}

func TestSubmissionsEndpoint(t *testing.T) {
	_, srv := newTestStub(t, Options{})
	webhook, token := register(t, srv)
	post(t, webhook, token, `{"regNo":"REG1","outcome":[[4,9]]}`)

	resp, err := http.Get(srv.URL + SubmissionsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	var subs []Submission
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&subs))
	require.Len(t, subs, 1)
	assert.Equal(t, [][2]int{{4, 9}}, subs[0].Outcome)
	assert.False(t, subs[0].Correct)
}

func TestSubmissionGrading(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		outcome string
		correct bool
	}{
		{name: "exact pairs", opts: Options{}, outcome: `[[1,2],[2,3]]`, correct: true},
		{name: "any order", opts: Options{}, outcome: `[[2,3],[1,2]]`, correct: true},
		{name: "missing pair", opts: Options{}, outcome: `[[1,2]]`, correct: false},
		{name: "repeated pair", opts: Options{}, outcome: `[[1,2],[2,3],[1,2]]`, correct: false},
		{name: "extra pair", opts: Options{}, outcome: `[[1,2],[2,3],[3,4]]`, correct: false},
		{name: "empty when users omitted", opts: Options{OmitUsers: true}, outcome: `[]`, correct: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub, srv := newTestStub(t, tt.opts)
			webhook, token := register(t, srv)

			resp, _ := post(t, webhook, token, `{"regNo":"REG1","outcome":`+tt.outcome+`}`)

			require.Equal(t, http.StatusOK, resp.StatusCode)
			subs := stub.Submissions()
			require.Len(t, subs, 1)
			assert.Equal(t, tt.correct, subs[0].Correct)
		})
	}
}
