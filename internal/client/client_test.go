package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/persistence"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeServer) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *fakeServer) {
	t.Helper()
	fake := &fakeServer{handler: handler}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(Config{BaseURL: srv.URL + "/", Token: token}, WithLogger(logger))
	return c, fake
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_ErrorHandling(t *testing.T) {
	t.Parallel()

	t.Run("401 clears the token and returns a session error", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "opaque-token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
		})

		_, err := c.ListVenues(context.Background())
		if !errors.Is(err, application.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if !strings.Contains(err.Error(), application.MessageSessionExpired) {
			t.Fatalf("expected session message, got %q", err.Error())
		}
		if c.Token() != "" {
			t.Fatalf("expected token to be cleared, got %q", c.Token())
		}
	})

	t.Run("error message from string, list and fallback", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name     string
			status   int
			body     string
			expected string
		}{
			{name: "string", status: http.StatusBadRequest, body: `{"message":"capacity must not be negative"}`, expected: "capacity must not be negative"},
			{name: "list", status: http.StatusBadRequest, body: `{"message":["code is required","name is required"]}`, expected: "code is required; name is required"},
			{name: "fallback", status: http.StatusInternalServerError, body: `<html>oops</html>`, expected: "HTTP error! status: 500"},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tc.status, tc.body)
				})
				_, err := c.ListVenues(context.Background())
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Message != tc.expected || apiErr.Status != tc.status {
					t.Fatalf("expected %d %q, got %d %q", tc.status, tc.expected, apiErr.Status, apiErr.Message)
				}
			})
		}
	})

	t.Run("404 and 409 unwrap to persistence sentinels", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/missing") {
				writeJSON(w, http.StatusNotFound, `{}`)
				return
			}
			writeJSON(w, http.StatusConflict, `{}`)
		})
		if err := c.DeleteVenue(context.Background(), "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := c.DeleteVenue(context.Background(), "taken"); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("expired jwt fails before any request", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": now.Add(-time.Minute).Unix(),
		}).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		fake := &fakeServer{handler: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[]`)
		}}
		srv := httptest.NewServer(fake)
		defer srv.Close()
		c := New(Config{BaseURL: srv.URL, Token: token}, WithClock(func() time.Time { return now }))

		if _, err := c.ListVenues(context.Background()); !errors.Is(err, application.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if got := len(fake.recorded()); got != 0 {
			t.Fatalf("expected no request, got %d", got)
		}
		if c.Token() != "" {
			t.Fatalf("expected token cleared")
		}
	})
}

func TestClient_ResponseBodies(t *testing.T) {
	t.Parallel()

	t.Run("204 and non-json bodies decode to nothing", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			default:
				w.Header().Set("Content-Type", "text/plain")
				_, _ = io.WriteString(w, "ok")
			}
		})
		if err := c.DeleteSlotTemplate(context.Background(), "t1"); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		venue := event.Venue{ID: "v1", Code: "SAL-001", Name: "Sala 1"}
		got, err := c.UpdateVenue(context.Background(), venue)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if got.ID != "v1" || got.Code != "SAL-001" {
			t.Fatalf("expected the input venue back, got %+v", got)
		}
	})

	t.Run("numeric day slot activity ids", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id":42,"slotTemplateId":"t1","day":"sexta","activity":{"id":"a1","title":"Go","speaker":"Ana"}}]`)
		})
		items, err := c.ListDaySlotActivities(context.Background())
		if err != nil {
			t.Fatalf("ListDaySlotActivities returned error: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected one item, got %d", len(items))
		}
		if items[0].ID != "42" || items[0].ActivityID != "a1" || items[0].Activity == nil {
			t.Fatalf("unexpected item %+v", items[0])
		}
		if items[0].Day != event.Sexta {
			t.Fatalf("expected sexta, got %s", items[0].Day)
		}
	})

	t.Run("null checklist maps to not found", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `null`)
		})
		if _, err := c.GetInfrastructure(context.Background(), "v1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := c.GetAudiovisual(context.Background(), "v1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[]`)
		})
		templates, err := c.ListSlotTemplates(context.Background())
		if err != nil {
			t.Fatalf("ListSlotTemplates returned error: %v", err)
		}
		if templates == nil || len(templates) != 0 {
			t.Fatalf("expected empty slice, got %#v", templates)
		}
	})
}

func TestClient_RequestShapes(t *testing.T) {
	t.Parallel()

	t.Run("slot template days follow the omit convention", func(t *testing.T) {
		t.Parallel()
		c, fake := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, `{"id":"t9","venueId":"v1","startTime":"10:00","endTime":"11:00"}`)
		})
		created, err := c.CreateSlotTemplate(context.Background(), event.SlotTemplate{
			VenueID: "v1", StartTime: "10:00", EndTime: "11:00", Scope: event.AllSelected(),
		})
		if err != nil {
			t.Fatalf("CreateSlotTemplate returned error: %v", err)
		}
		if !created.Scope.IsAllSelected() {
			t.Fatalf("expected AllSelected scope for absent days")
		}
		if _, err := c.CreateSlotTemplate(context.Background(), event.SlotTemplate{
			VenueID: "v1", StartTime: "10:00", EndTime: "11:00", Scope: event.Explicit(event.Sexta, event.Quinta),
		}); err != nil {
			t.Fatalf("CreateSlotTemplate returned error: %v", err)
		}

		reqs := fake.recorded()
		if len(reqs) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(reqs))
		}
		if strings.Contains(reqs[0].Body, "days") {
			t.Fatalf("expected days omitted, got %s", reqs[0].Body)
		}
		if !strings.Contains(reqs[1].Body, `"days":["quinta","sexta"]`) {
			t.Fatalf("expected sorted days, got %s", reqs[1].Body)
		}
		if reqs[0].Auth != "Bearer tok" || reqs[0].Path != "/slot-templates" {
			t.Fatalf("unexpected request %+v", reqs[0])
		}
	})

	t.Run("next code uses none for empty type", func(t *testing.T) {
		t.Parallel()
		c, fake := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":"VEN-001"}`)
		})
		code, err := c.NextVenueCode(context.Background(), "")
		if err != nil {
			t.Fatalf("NextVenueCode returned error: %v", err)
		}
		if code != "VEN-001" {
			t.Fatalf("expected VEN-001, got %q", code)
		}
		if path := fake.recorded()[0].Path; path != "/venues/next-code/none" {
			t.Fatalf("unexpected path %q", path)
		}
	})

	t.Run("venue day activity put", func(t *testing.T) {
		t.Parallel()
		c, fake := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":7,"venueId":"v1","day":"sabado","activityType":"musica"}`)
		})
		got, err := c.PutVenueDayActivity(context.Background(), "v1", event.Sabado, event.ActivityMusica)
		if err != nil {
			t.Fatalf("PutVenueDayActivity returned error: %v", err)
		}
		if got.ID != "7" || got.ActivityType != event.ActivityMusica {
			t.Fatalf("unexpected result %+v", got)
		}
		req := fake.recorded()[0]
		if req.Method != http.MethodPut || req.Path != "/venue-day-activities/venue/v1/day/sabado" {
			t.Fatalf("unexpected request %+v", req)
		}
		if req.Body != `{"activityType":"musica"}` {
			t.Fatalf("unexpected body %s", req.Body)
		}
	})

	t.Run("batch infrastructure wraps updates", func(t *testing.T) {
		t.Parallel()
		c, fake := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"venueId":"v1","alvara":true,"status":"ok"}]`)
		})
		out, err := c.BatchUpsertInfrastructure(context.Background(), []event.Infrastructure{{VenueID: "v1", Alvara: true, Status: "ok"}})
		if err != nil {
			t.Fatalf("BatchUpsertInfrastructure returned error: %v", err)
		}
		if len(out) != 1 || !out[0].Alvara {
			t.Fatalf("unexpected result %+v", out)
		}
		var payload struct {
			Updates []map[string]any `json:"updates"`
		}
		req := fake.recorded()[0]
		if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if req.Path != "/venue-infrastructure/batch" || len(payload.Updates) != 1 || payload.Updates[0]["venueId"] != "v1" {
			t.Fatalf("unexpected batch request %+v", req)
		}
	})

	t.Run("upsert falls back to create on 404", func(t *testing.T) {
		t.Parallel()
		c, fake := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
				return
			}
			writeJSON(w, http.StatusCreated, `{"venueId":"v1","tela":true,"status":""}`)
		})
		got, err := c.UpsertAudiovisual(context.Background(), event.Audiovisual{VenueID: "v1", Tela: true})
		if err != nil {
			t.Fatalf("UpsertAudiovisual returned error: %v", err)
		}
		if !got.Tela {
			t.Fatalf("expected tela true, got %+v", got)
		}
		reqs := fake.recorded()
		if len(reqs) != 2 || reqs[1].Method != http.MethodPost || reqs[1].Path != "/venue-audiovisual" {
			t.Fatalf("unexpected requests %+v", reqs)
		}
	})
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	c, fake := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			writeJSON(w, http.StatusCreated, `{"access_token":"fresh"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"default","selectedDays":["sexta","quinta"]}`)
	})

	token, err := c.Login(context.Background(), "org@hacktown.com.br", "senha")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "fresh" || c.Token() != "fresh" {
		t.Fatalf("expected token stored, got %q", c.Token())
	}
	cfg, err := c.GetEventConfig(context.Background())
	if err != nil {
		t.Fatalf("GetEventConfig returned error: %v", err)
	}
	if len(cfg.SelectedDays) != 2 || cfg.SelectedDays[0] != event.Quinta {
		t.Fatalf("expected sorted days, got %v", cfg.SelectedDays)
	}
	reqs := fake.recorded()
	if reqs[0].Auth != "" {
		t.Fatalf("login must not send a bearer token")
	}
	if reqs[1].Auth != "Bearer fresh" {
		t.Fatalf("expected bearer token on later requests, got %q", reqs[1].Auth)
	}
}
