package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blockparty/build-battle-backend/internal/hub"
	"github.com/blockparty/build-battle-backend/internal/ratelimit"
	"github.com/blockparty/build-battle-backend/internal/room"
	"github.com/blockparty/build-battle-backend/internal/targets"
)

const testSecret = "sssh"

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	lib, err := targets.Load("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Deps{
		RoomCfg: room.Config{RoundDuration: time.Minute},
		Targets: lib,
		Limiter: ratelimit.NewTable(time.Minute),
	})
	srv := httptest.NewServer(SetupRoutes(h, testSecret, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, h
}

func TestGenerateCode_Shape(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestCreateRoom(t *testing.T) {
	srv, h := newTestServer(t)

	resp, err := http.Post(srv.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Code, 6)

	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: body.Code, Reply: reply}
	assert.NotNil(t, <-reply)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func bridgePost(t *testing.T, url, secret, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Bridge-Secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAIBridge_RejectsBadSecret(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := bridgePost(t, srv.URL+"/room/ZED123", "wrong",
		`{"type":"aiResponse","teamId":"team-1","text":"hi","actions":[]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAIBridge_RejectsMalformedBody(t *testing.T) {
	srv, h := newTestServer(t)
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.EnsureRoom{Code: "ZED123", Reply: reply}
	<-reply

	resp := bridgePost(t, srv.URL+"/room/ZED123", testSecret, `{not json`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2 := bridgePost(t, srv.URL+"/room/ZED123", testSecret,
		`{"type":"somethingElse","teamId":"team-1"}`)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestAIBridge_UnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := bridgePost(t, srv.URL+"/room/NOPE00", testSecret,
		`{"type":"aiResponse","teamId":"team-1","text":"hi","actions":[]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAIBridge_AcceptsValidCallback(t *testing.T) {
	srv, h := newTestServer(t)
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.EnsureRoom{Code: "ZED123", Reply: reply}
	<-reply

	resp := bridgePost(t, srv.URL+"/room/ZED123", testSecret,
		`{"type":"aiResponse","teamId":"team-1","text":"on it","actions":[{"row":1,"col":1,"height":0,"block":"wall"}]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestAIBridge_Preflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/room/ZED123", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAIBridge_DisabledWithoutSecret(t *testing.T) {
	lib, err := targets.Load("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Deps{
		RoomCfg: room.Config{RoundDuration: time.Minute},
		Targets: lib,
	})
	srv := httptest.NewServer(SetupRoutes(h, "", zap.NewNop()))
	t.Cleanup(srv.Close)

	resp := bridgePost(t, srv.URL+"/room/ZED123", "anything",
		`{"type":"aiResponse","teamId":"team-1","text":"hi","actions":[]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
