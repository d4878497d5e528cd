package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const testAccessToken = "test-token"

func newTestClient(t *testing.T, handler http.Handler) *GoogleSyncClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := NewSessionManager("client-id", "client-secret", "refresh-token", zap.NewNop())
	session.TokenEndpoint = srv.URL + "/token"
	session.HTTPClient = srv.Client()

	client := NewGoogleSyncClient("Agentforce PTO", 8, session, zap.NewNop())
	client.BaseURL = srv.URL
	client.HTTPClient = srv.Client()
	return client
}

func serveToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"access_token": testAccessToken, "scope": "calendar"})
}

func authed(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testAccessToken
}

func calendarListJSON() string {
	return `{"items":[
		{"id":"cal-1","summary":"Agentforce PTO","timeZone":"UTC"},
		{"id":"cal-2","summary":"Team Meetings","timeZone":"UTC"}
	]}`
}

func TestGoogleRefreshRetryOn401(t *testing.T) {
	tokenCalls := 0
	listCalls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenCalls++
			serveToken(w, r)
		case "/users/me/calendarList":
			listCalls++
			if !authed(r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(calendarListJSON()))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	cal, err := client.FindDefaultCalendar(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cal.ID != "cal-1" {
		t.Errorf("calendar id = %q, want cal-1", cal.ID)
	}
	if tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want exactly 1", tokenCalls)
	}
	if listCalls != 2 {
		t.Errorf("list endpoint called %d times, want 2 (original + retry)", listCalls)
	}
}

func TestGoogleSecondUnauthorizedIsFatal(t *testing.T) {
	tokenCalls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			tokenCalls++
			serveToken(w, r)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	var authErr *AuthError
	_, err := client.FindDefaultCalendar(context.Background())
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want exactly 1 (no infinite retry)", tokenCalls)
	}
}

func TestGoogleRefreshWithoutTokenConfigured(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client.Session.RefreshToken = ""

	var authErr *AuthError
	_, err := client.FindDefaultCalendar(context.Background())
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if !strings.Contains(authErr.Message, "not configured") {
		t.Errorf("unexpected message: %q", authErr.Message)
	}
}

func TestGoogleForbiddenIsPermissionError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			serveToken(w, r)
			return
		}
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))

	var permErr *PermissionError
	if _, err := client.FindDefaultCalendar(context.Background()); !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}

func TestGoogleUnexpectedStatusIsRemoteError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			serveToken(w, r)
			return
		}
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("backend exploded"))
	}))

	var remoteErr *RemoteError
	_, err := client.FindDefaultCalendar(context.Background())
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", remoteErr.Status)
	}
	if !strings.Contains(remoteErr.Body, "backend exploded") {
		t.Errorf("body %q does not carry the response body", remoteErr.Body)
	}
}

func TestGoogleAmbiguousCalendarName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			serveToken(w, r)
			return
		}
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"items":[
			{"id":"cal-1","summary":"Agentforce PTO"},
			{"id":"cal-dup","summary":"Agentforce PTO"}
		]}`))
	}))

	var notFound *NotFoundError
	if _, err := client.FindDefaultCalendar(context.Background()); !errors.As(err, &notFound) {
		t.Fatalf("ambiguous name must be NotFoundError, got %v", err)
	}
}

func TestGoogleListEventsPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			serveToken(w, r)
		case !authed(r):
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/users/me/calendarList":
			_, _ = w.Write([]byte(calendarListJSON()))
		case r.URL.Path == "/calendars/cal-1/events":
			if r.URL.Query().Get("maxResults") != "2500" {
				t.Errorf("maxResults = %q, want 2500", r.URL.Query().Get("maxResults"))
			}
			if r.URL.Query().Get("q") != "jane@example.com" {
				t.Errorf("q = %q", r.URL.Query().Get("q"))
			}
			if r.URL.Query().Get("pageToken") == "" {
				_, _ = w.Write([]byte(`{"nextPageToken":"page-2","items":[
					{"id":"ev-late","summary":"PTO: Jane Doe",
					 "start":{"dateTime":"2025-03-11T14:00:00Z"},"end":{"dateTime":"2025-03-11T22:00:00Z"}}
				]}`))
				return
			}
			_, _ = w.Write([]byte(`{"items":[
				{"id":"ev-early","summary":"PTO: Jane Doe",
				 "start":{"dateTime":"2025-03-10T14:00:00Z"},"end":{"dateTime":"2025-03-10T22:00:00Z"}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	events, err := client.ListEvents(context.Background(), ListQuery{Query: "jane@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events across pages, got %d", len(events))
	}
	if events[0].ID != "ev-early" || events[1].ID != "ev-late" {
		t.Errorf("events not sorted ascending by start: %s, %s", events[0].ID, events[1].ID)
	}
}

func TestGoogleCreateEvent(t *testing.T) {
	var captured eventResource
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			serveToken(w, r)
		case !authed(r):
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/users/me/calendarList":
			_, _ = w.Write([]byte(calendarListJSON()))
		case r.URL.Path == "/calendars/cal-1/events" && r.Method == http.MethodPost:
			if r.URL.Query().Get("sendUpdates") != "none" {
				t.Error("create must send sendUpdates=none")
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatal(err)
			}
			captured.ID = "ev-new"
			captured.Status = "confirmed"
			captured.Creator = &eventCreator{Email: "calendar-owner@example.com"}
			_ = json.NewEncoder(w).Encode(captured)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	event, err := client.CreateEvent(context.Background(), CreateEventInput{
		Start:         ts(t, "2025-03-10T14:00:00Z"),
		End:           ts(t, "2025-03-10T22:00:00Z"),
		EmployeeName:  "Jane Doe",
		EmployeeEmail: "jane@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	if captured.Summary != "PTO: Jane Doe" {
		t.Errorf("wire summary = %q", captured.Summary)
	}
	if len(captured.Attendees) != 1 || captured.Attendees[0].ResponseStatus != "accepted" {
		t.Errorf("attendee not recorded as accepted: %+v", captured.Attendees)
	}
	if event.ID != "ev-new" || event.DurationHours != 8 || !event.IsFullDay {
		t.Errorf("normalized event wrong: %+v", event)
	}
	if event.CreatorEmail != "calendar-owner@example.com" {
		t.Errorf("creatorEmail = %q", event.CreatorEmail)
	}
	if len(event.Attendees) != 1 || event.Attendees[0] != "jane@example.com" {
		t.Errorf("attendees not flattened to emails: %+v", event.Attendees)
	}
}

func TestGoogleUpdateEventPushesFullObject(t *testing.T) {
	var pushed eventResource
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			serveToken(w, r)
		case !authed(r):
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/users/me/calendarList":
			_, _ = w.Write([]byte(calendarListJSON()))
		case r.URL.Path == "/calendars/cal-1/events/ev-1" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"id":"ev-1","summary":"PTO: Jane Doe","description":"Jane Doe","status":"confirmed",
				"start":{"dateTime":"2025-03-10T14:00:00Z","timeZone":"UTC"},
				"end":{"dateTime":"2025-03-10T22:00:00Z","timeZone":"UTC"},
				"attendees":[{"email":"jane@example.com","responseStatus":"accepted"}]}`))
		case r.URL.Path == "/calendars/cal-1/events/ev-1" && r.Method == http.MethodPut:
			if r.URL.Query().Get("sendUpdates") != "none" {
				t.Error("update must send sendUpdates=none")
			}
			if err := json.NewDecoder(r.Body).Decode(&pushed); err != nil {
				t.Fatal(err)
			}
			_ = json.NewEncoder(w).Encode(pushed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	event, err := client.UpdateEvent(context.Background(), "ev-1", ts(t, "2025-03-10T15:00:00Z"), ts(t, "2025-03-10T17:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if event.ID != "ev-1" {
		t.Errorf("id = %q, want ev-1", event.ID)
	}
	if event.DurationHours != 2 || event.IsFullDay {
		t.Errorf("derived fields wrong after update: %+v", event)
	}
	// The whole fetched object goes back, not a patch.
	if pushed.Summary != "PTO: Jane Doe" || len(pushed.Attendees) != 1 {
		t.Errorf("update did not push the full event object: %+v", pushed)
	}
	if pushed.Start.DateTime != "2025-03-10T15:00:00Z" {
		t.Errorf("pushed start = %q", pushed.Start.DateTime)
	}
}

func TestGoogleGetAndDeleteMissingEvent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			serveToken(w, r)
		case !authed(r):
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/users/me/calendarList":
			_, _ = w.Write([]byte(calendarListJSON()))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	var notFound *NotFoundError
	if _, err := client.GetEvent(context.Background(), "missing"); !errors.As(err, &notFound) {
		t.Errorf("GetEvent: expected NotFoundError, got %v", err)
	}
	if err := client.DeleteEvent(context.Background(), "missing"); !errors.As(err, &notFound) {
		t.Errorf("DeleteEvent: expected NotFoundError, got %v", err)
	}
	if _, err := client.GetEvent(context.Background(), ""); !errors.As(err, &notFound) {
		t.Errorf("GetEvent with empty id: expected NotFoundError, got %v", err)
	}
}

func TestSessionManagerExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("empty") == "1" {
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		serveToken(w, r)
	}))
	t.Cleanup(srv.Close)

	session := NewSessionManager("client-id", "client-secret", "refresh-token", zap.NewNop())
	session.TokenEndpoint = srv.URL
	session.HTTPClient = srv.Client()

	if err := session.LoginWithRefreshToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if session.AccessToken() != testAccessToken {
		t.Errorf("access token = %q", session.AccessToken())
	}

	// Exchange that yields no access token is an auth failure.
	session.TokenEndpoint = srv.URL + "?empty=1"
	var authErr *AuthError
	if err := session.LoginWithRefreshToken(context.Background()); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	// The previous credential stays in place after a failed refresh.
	if session.AccessToken() != testAccessToken {
		t.Errorf("failed refresh clobbered the session: %q", session.AccessToken())
	}

	// No refresh credential configured at all.
	unconfigured := NewSessionManager("client-id", "client-secret", "", zap.NewNop())
	if err := unconfigured.LoginWithRefreshToken(context.Background()); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}
