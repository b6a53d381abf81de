package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	method, path, query string
	header              http.Header
	body                map[string]any
}

func newBackend(status int, reply string) (*httptest.Server, *recorded) {
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.query, rec.header = r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Clone()
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	return srv, rec
}

func signed(t *testing.T, secret string, sub string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "sat@example.com",
		"exp":   exp.Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew(t *testing.T) {
	Convey("Given missing settings", t, func() {
		_, err := New("", "key")
		So(errors.Is(err, ErrNotConfigured), ShouldBeTrue)
		_, err = New("https://x.supabase.co", " ")
		So(errors.Is(err, ErrNotConfigured), ShouldBeTrue)
		_, err = New("not a url", "key")
		So(errors.Is(err, ErrNotConfigured), ShouldBeTrue)
	})
}

func TestRequests(t *testing.T) {
	Convey("Given a backend answering 200", t, func() {
		srv, rec := newBackend(http.StatusOK, `[{"scores":{"coding":4}}]`)
		Reset(srv.Close)
		c, err := New(srv.URL+"/", "anon-key")
		So(err, ShouldBeNil)

		Convey("Select builds a PostgREST query and decodes rows", func() {
			var rows []struct {
				Scores map[string]float64 `json:"scores"`
			}
			ctx := WithAccessToken(context.Background(), "user-token")
			err := c.Select(ctx, "user_scores", Query{
				Columns: "id, scores",
				Eq:      []Filter{{Column: "user_id", Value: "u1"}},
				Order:   "created_at",
				Desc:    true,
				Limit:   5,
			}, &rows)

			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Scores["coding"], ShouldEqual, 4)
			So(rec.method, ShouldEqual, http.MethodGet)
			So(rec.path, ShouldEqual, "/rest/v1/user_scores")
			So(rec.query, ShouldEqual, "limit=5&order=created_at.desc&select=id%2Cscores&user_id=eq.u1")
			So(rec.header.Get("apikey"), ShouldEqual, "anon-key")
			So(rec.header.Get("Authorization"), ShouldEqual, "Bearer user-token")
		})

		Convey("Requests without a session use the anon key as bearer", func() {
			var out []map[string]any
			So(c.RPC(context.Background(), "get_category_averages", nil, &out), ShouldBeNil)
			So(rec.path, ShouldEqual, "/rest/v1/rpc/get_category_averages")
			So(rec.method, ShouldEqual, http.MethodPost)
			So(rec.header.Get("Authorization"), ShouldEqual, "Bearer anon-key")
		})

		Convey("Upsert asks for merge on the conflict key", func() {
			err := c.Upsert(context.Background(), "user_scores", map[string]any{"user_id": "u1"}, "user_id")
			So(err, ShouldBeNil)
			So(rec.query, ShouldEqual, "on_conflict=user_id")
			So(rec.header.Get("Prefer"), ShouldContainSubstring, "resolution=merge-duplicates")
			So(rec.body["user_id"], ShouldEqual, "u1")
		})

		Convey("Insert posts the row", func() {
			err := c.Insert(context.Background(), "user_score_events", map[string]any{"category": "coding"})
			So(err, ShouldBeNil)
			So(rec.path, ShouldEqual, "/rest/v1/user_score_events")
			So(rec.header.Get("Prefer"), ShouldEqual, "return=minimal")
		})

		Convey("Authenticate posts to the OTP endpoint with the redirect", func() {
			err := c.Authenticate(context.Background(), " sat@example.com ", "https://app.example/")
			So(err, ShouldBeNil)
			So(rec.path, ShouldEqual, "/auth/v1/otp")
			So(rec.query, ShouldEqual, "redirect_to=https%3A%2F%2Fapp.example%2F")
			So(rec.body["email"], ShouldEqual, "sat@example.com")
		})

		Convey("Authenticate rejects an empty e-mail without calling out", func() {
			So(c.Authenticate(context.Background(), "  ", ""), ShouldNotBeNil)
			So(rec.path, ShouldEqual, "")
		})
	})

	Convey("Given a backend rejecting requests", t, func() {
		Convey("401 maps to ErrUnauthorized with the backend message", func() {
			srv, _ := newBackend(http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired"}`)
			defer srv.Close()
			c, _ := New(srv.URL, "k")

			err := c.Insert(context.Background(), "t", map[string]any{})
			So(errors.Is(err, ErrUnauthorized), ShouldBeTrue)
			var re *Error
			So(errors.As(err, &re), ShouldBeTrue)
			So(re.Code, ShouldEqual, "PGRST301")
			So(re.Message, ShouldEqual, "JWT expired")
		})

		Convey("Other statuses map to ErrRemote", func() {
			srv, _ := newBackend(http.StatusUnprocessableEntity, `{"msg":"Email rate limit exceeded"}`)
			defer srv.Close()
			c, _ := New(srv.URL, "k")

			err := c.Authenticate(context.Background(), "a@b.c", "")
			So(errors.Is(err, ErrRemote), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Email rate limit exceeded")
		})

		Convey("A non-JSON body becomes the message", func() {
			srv, _ := newBackend(http.StatusBadGateway, `upstream down`)
			defer srv.Close()
			c, _ := New(srv.URL, "k")

			err := c.RPC(context.Background(), "f", nil, nil)
			So(errors.Is(err, ErrRemote), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "upstream down")
		})
	})

	Convey("Given an unreachable backend", t, func() {
		srv, _ := newBackend(http.StatusOK, `[]`)
		url := srv.URL
		srv.Close()
		c, _ := New(url, "k", WithTimeout(time.Second))

		err := c.Select(context.Background(), "profiles", Query{}, &[]map[string]any{})
		So(errors.Is(err, ErrTransport), ShouldBeTrue)
	})
}

func TestSession(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a client that verifies tokens", t, func() {
		c, _ := New("https://x.supabase.co", "k", WithJWTSecret("s3cret"), WithClock(clock))

		Convey("A valid token yields the user", func() {
			tok := signed(t, "s3cret", "user-1", now.Add(time.Hour))
			s, err := c.Session(WithAccessToken(context.Background(), tok))
			So(err, ShouldBeNil)
			So(s.UserID, ShouldEqual, "user-1")
			So(s.Email, ShouldEqual, "sat@example.com")
			So(s.ExpiresAt.Equal(now.Add(time.Hour)), ShouldBeTrue)
		})

		Convey("A token signed with another secret is rejected", func() {
			tok := signed(t, "other", "user-1", now.Add(time.Hour))
			_, err := c.Session(WithAccessToken(context.Background(), tok))
			So(errors.Is(err, ErrNotSignedIn), ShouldBeTrue)
		})

		Convey("An expired token is rejected", func() {
			tok := signed(t, "s3cret", "user-1", now.Add(-time.Minute))
			_, err := c.Session(WithAccessToken(context.Background(), tok))
			So(errors.Is(err, ErrNotSignedIn), ShouldBeTrue)
		})
	})

	Convey("Given a client without a secret", t, func() {
		c, _ := New("https://x.supabase.co", "k", WithClock(clock))

		Convey("Tokens are decoded without verification", func() {
			tok := signed(t, "anything", "user-2", now.Add(time.Hour))
			s, err := c.Session(WithAccessToken(context.Background(), tok))
			So(err, ShouldBeNil)
			So(s.UserID, ShouldEqual, "user-2")
		})

		Convey("Expiry is still enforced", func() {
			tok := signed(t, "anything", "user-2", now.Add(-time.Hour))
			_, err := c.Session(WithAccessToken(context.Background(), tok))
			So(errors.Is(err, ErrNotSignedIn), ShouldBeTrue)
		})

		Convey("Garbage and missing tokens mean not signed in", func() {
			_, err := c.Session(WithAccessToken(context.Background(), "abc"))
			So(errors.Is(err, ErrNotSignedIn), ShouldBeTrue)
			_, err = c.Session(context.Background())
			So(errors.Is(err, ErrNotSignedIn), ShouldBeTrue)
		})
	})
}
