package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/metrics"
	"github.com/Makepad-fr/tada/internal/model"
)

func TestListNotes(t *testing.T) {
	var gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		gotSession = r.Header.Get(SessionHeader)
		_, _ = w.Write([]byte(`{"notes":[{"id":1,"name":"a","isChecked":true},{"id":2,"name":"b","isChecked":false}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	notes, err := c.ListNotes(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, []model.Note{
		{ID: 1, Name: "a", IsChecked: true},
		{ID: 2, Name: "b", IsChecked: false},
	}, notes)
	assert.Equal(t, c.Session(), gotSession)
	assert.NotEmpty(t, gotSession)
}

func TestSearchNotesEncodesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes-search", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "milk & eggs", r.URL.Query().Get("search"))
		assert.Contains(t, r.URL.RawQuery, "search=milk%20%26%20eggs")
		_, _ = w.Write([]byte(`{"notes":[]}`))
	}))
	defer srv.Close()

	notes, err := NewClient(srv.URL).SearchNotes(context.Background(), 0, "milk & eggs")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "buy milk", want: "offset=0&search=buy%20milk"},
		{query: "a+b c", want: "offset=0&search=a%2Bb%20c"},
		{query: "100%", want: "offset=0&search=100%25"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q := url.Values{}
			q.Set("offset", "0")
			q.Set("search", tt.query)
			assert.Equal(t, tt.want, encodeQuery(q))
		})
	}
}

func TestListNotesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			wantErr: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
				assert.Equal(t, "boom", se.Body)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"notes": "nope"}`,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "unmarshal response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).ListNotes(context.Background(), 0)
			require.Error(t, err)
			tt.wantErr(t, err)
		})
	}
}

func TestChangeNotes(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/change-notes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"OK"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ChangeNotes(context.Background(), model.ChangeRequest{
		NotesChecked: []model.CheckEdit{{ID: 7, IsChecked: true}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"isChecked":true}]`, string(got["notes_checked"]))
	assert.JSONEq(t, `[]`, string(got["notes_position"]))
}

func TestChangeNotesNotConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"busy"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ChangeNotes(context.Background(), model.ChangeRequest{
		NotesPosition: []model.PositionEdit{{ID: 1, FromIndex: 0, ToIndex: 3}},
	})
	assert.True(t, errors.Is(err, ErrNotConfirmed), "got %v", err)
}

func TestClientRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/notes" {
			_, _ = w.Write([]byte(`{"notes":[]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := metrics.New(prometheus.NewRegistry())
	c := NewClient(srv.URL, WithMetrics(m))

	_, err := c.ListNotes(context.Background(), 0)
	require.NoError(t, err)
	_, err = c.SearchNotes(context.Background(), 0, "x")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("notes", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("notes-search", "error")))
}
