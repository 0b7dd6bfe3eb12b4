package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

// newTestClient starts an httptest server with the given handler and returns
// a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, time.Second)
}

// TestSubjectByFingerprint covers found, unknown and missing-slot responses.
func TestSubjectByFingerprint(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getuserbyfingerprint/7":
			_, _ = w.Write([]byte(`{"name":"Maria Santos","role":"faculty"}`))
		case "/getuserbyfingerprint/8":
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	})

	subject, err := client.SubjectByFingerprint(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Maria Santos", subject.Name)
	require.Equal(t, access.ChannelFingerprint, subject.Channel)
	require.Equal(t, "7", subject.Key)

	// Empty directory object means unknown.
	_, err = client.SubjectByFingerprint(context.Background(), 8)
	require.ErrorIs(t, err, ErrNotFound)

	// 404 means unknown.
	_, err = client.SubjectByFingerprint(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSubjectByCard resolves a card UID and passes it as a query parameter.
func TestSubjectByCard(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user-information/by-id-card", r.URL.Path)
		require.Equal(t, "04a3b2c1", r.URL.Query().Get("id_card_id"))
		_, _ = w.Write([]byte(`{"user_name":"Jun Reyes","user_number":"2021-0042","year":"3","block":"A"}`))
	})

	subject, err := client.SubjectByCard(context.Background(), "04a3b2c1")
	require.NoError(t, err)
	require.Equal(t, "Jun Reyes", subject.Name)
	require.Equal(t, access.ChannelRFID, subject.Channel)
}

// TestSchedules parses entries and rejects malformed clock values.
func TestSchedules(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lab-schedules/fingerprint/7":
			_, _ = w.Write([]byte(`[
				{"day_of_the_week":"Tuesday","class_start":"13:00","class_end":"15:00","is_makeup_class":0,"specific_date":"N/A"},
				{"day_of_the_week":"","class_start":"09:00","class_end":"11:00","is_makeup_class":1,"specific_date":"2025-03-17"}
			]`))
		case "/lab-schedules/fingerprint/8":
			_, _ = w.Write([]byte(`[{"day_of_the_week":"Tuesday","class_start":"1pm","class_end":"15:00","is_makeup_class":0}]`))
		default:
			http.NotFound(w, r)
		}
	})

	subject := &access.Subject{Channel: access.ChannelFingerprint, Key: "7"}

	entries, err := client.Schedules(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.False(t, entries[0].IsMakeup)
	require.Equal(t, "13:00", entries[0].Start.String())
	require.True(t, entries[1].IsMakeup)
	require.Equal(t, "2025-03-17", entries[1].SpecificDate.String())

	// Malformed times never reach the authorizer.
	subject.Key = "8"
	_, err = client.Schedules(context.Background(), subject)
	require.ErrorIs(t, err, access.ErrMalformedTime)
}

// TestCurrentMoment validates the date-time feed and fails on missing fields.
func TestCurrentMoment(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"day_of_week":"Tuesday","current_time":"14:05"}`))
	})

	now, err := client.CurrentMoment(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Tuesday", now.Weekday)
	require.Equal(t, "14:05", now.Time.String())
	require.False(t, now.Date.IsZero())

	empty := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err = empty.CurrentMoment(context.Background())
	require.Error(t, err)
}

// TestOpenRecord returns only the row with a time-in and no time-out.
func TestOpenRecord(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recent-logs/by-uid", r.URL.Path)
		require.Equal(t, "04a3b2c1", r.URL.Query().Get("rfid_number"))
		_, _ = w.Write([]byte(`[
			{"date":"2025-03-17","user_name":"Jun Reyes","UID":"04a3b2c1","time_in":"08:00","time_out":"10:00"},
			{"date":"2025-03-17","user_name":"Jun Reyes","UID":"04a3b2c1","time_in":"13:05","time_out":""}
		]`))
	})

	subject := &access.Subject{Channel: access.ChannelRFID, Key: "04a3b2c1"}

	rec, err := client.OpenRecord(context.Background(), subject)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.Open())
	require.Equal(t, "13:05", rec.TimeIn.String())

	none := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	rec, err = none.OpenRecord(context.Background(), subject)
	require.NoError(t, err)
	require.Nil(t, rec)
}

// TestRecordTimeIn sends the expected endpoint and query per channel.
func TestRecordTimeIn(t *testing.T) {
	t.Parallel()

	var seen []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		seen = append(seen, r.URL.Path+"?"+r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	})

	timeIn, err := access.ParseTimeOfDay("13:05")
	require.NoError(t, err)

	faculty := &access.Subject{Channel: access.ChannelFingerprint, Key: "7", Name: "Maria Santos"}
	require.NoError(t, client.RecordTimeIn(context.Background(), faculty, timeIn))

	student := &access.Subject{Channel: access.ChannelRFID, Key: "04a3b2c1", Name: "Jun Reyes"}
	require.NoError(t, client.RecordTimeIn(context.Background(), student, timeIn))

	require.Len(t, seen, 2)
	require.Contains(t, seen[0], "/logs/time-in/fingerprint?")
	require.Contains(t, seen[0], "fingerprint_id=7")
	require.Contains(t, seen[1], "/logs/time-in?")
	require.Contains(t, seen[1], "rfid_number=04a3b2c1")
}

// TestOpenRecords filters the system-wide log down to open sessions.
func TestOpenRecords(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"date":"2025-03-17","user_name":"Jun Reyes","UID":"04a3b2c1","time_in":"13:05","time_out":""},
			{"date":"2025-03-17","user_name":"Ana Cruz","UID":"09f1e2d3","time_in":"13:20","time_out":""},
			{"date":"2025-03-17","user_name":"Maria Santos","fingerprint_id":"7","time_in":"08:00","time_out":"10:00"}
		]`))
	})

	open, err := client.OpenRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 2)

	for _, rec := range open {
		require.True(t, rec.Open())
	}
}

// TestLatestStatus takes the newest log entry and rejects unknown labels.
func TestLatestStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"logs":[{"status":"close"},{"status":"open"}]}`))
	})

	status, err := client.LatestStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, access.StatusOpen, status)

	bogus := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"logs":[{"status":"ajar"}]}`))
	})

	_, err = bogus.LatestStatus(context.Background())
	require.ErrorIs(t, err, access.ErrUnknownStatus)
}

// TestRegisterFingerprint sends the enrollment binding as query parameters.
func TestRegisterFingerprint(t *testing.T) {
	t.Parallel()

	var query url.Values

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/users/update-fingerprint", r.URL.Path)
		query = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.RegisterFingerprint(context.Background(), "m.santos@cspc.edu.ph", 12))
	require.Equal(t, "m.santos@cspc.edu.ph", query.Get("email"))
	require.Equal(t, "12", query.Get("fingerprint_id"))
}

// TestTransportFailure surfaces unreachable backends as errors, never as data.
func TestTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close()

	client := NewClient(srv.URL, 200*time.Millisecond)

	_, err := client.LatestStatus(context.Background())
	require.Error(t, err)
}
