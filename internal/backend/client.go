package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

var (
	// ErrNotFound is returned when the directory has no subject for the
	// scanned identifier. Unknown identity never authorizes.
	ErrNotFound = errors.New("subject not found")

	// errUnexpectedStatus is returned for non-success backend responses.
	errUnexpectedStatus = errors.New("unexpected backend response status")

	// errMissingField is returned when a response lacks an expected field.
	errMissingField = errors.New("missing expected field in backend response")
)

// roleIDs the backend assigns on time-in, mirroring its user role table.
const (
	roleIDFaculty = "2"
	roleIDStudent = "3"
)

// Client talks to the remote attendance backend over HTTP.
// It is safe for concurrent use; every method fails closed on transport
// or data errors.
type Client struct {
	// baseURL is the backend API root without a trailing slash.
	baseURL string
	// httpClient performs the requests with the configured timeout.
	httpClient *http.Client
}

// NewClient creates a backend client for the given API root.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubjectByFingerprint resolves the subject enrolled at the given sensor slot.
func (c *Client) SubjectByFingerprint(ctx context.Context, slot uint16) (*access.Subject, error) {
	var payload struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}

	key := strconv.FormatUint(uint64(slot), 10)
	if err := c.getJSON(ctx, "/getuserbyfingerprint/"+url.PathEscape(key), nil, &payload); err != nil {
		return nil, err
	}

	// The directory answers 200 with an empty object for unknown slots.
	if payload.Name == "" {
		return nil, ErrNotFound
	}

	role := payload.Role
	if role == "" {
		role = "faculty"
	}

	return &access.Subject{
		Channel: access.ChannelFingerprint,
		Key:     key,
		Name:    payload.Name,
		Role:    role,
	}, nil
}

// SubjectByCard resolves the subject owning the given card UID.
func (c *Client) SubjectByCard(ctx context.Context, uid string) (*access.Subject, error) {
	var payload struct {
		UserName   string `json:"user_name"`
		UserNumber string `json:"user_number"`
		Year       string `json:"year"`
		Block      string `json:"block"`
	}

	query := url.Values{"id_card_id": {uid}}
	if err := c.getJSON(ctx, "/user-information/by-id-card", query, &payload); err != nil {
		return nil, err
	}

	if payload.UserName == "" {
		return nil, ErrNotFound
	}

	return &access.Subject{
		Channel: access.ChannelRFID,
		Key:     uid,
		Name:    payload.UserName,
		Role:    "student",
	}, nil
}

// scheduleDTO is the wire shape of one lab-schedule entry.
type scheduleDTO struct {
	DayOfTheWeek  string `json:"day_of_the_week"`
	ClassStart    string `json:"class_start"`
	ClassEnd      string `json:"class_end"`
	IsMakeupClass int    `json:"is_makeup_class"`
	SpecificDate  string `json:"specific_date"`
}

// Schedules fetches and validates every schedule entry for the subject.
func (c *Client) Schedules(ctx context.Context, subject *access.Subject) ([]access.ScheduleEntry, error) {
	path := "/lab-schedules/fingerprint/" + url.PathEscape(subject.Key)
	if subject.Channel == access.ChannelRFID {
		path = "/student/lab-schedule/rfid/" + url.PathEscape(subject.Key)
	}

	var payload []scheduleDTO
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, err
	}

	entries := make([]access.ScheduleEntry, 0, len(payload))

	for _, dto := range payload {
		entry := access.ScheduleEntry{
			IsMakeup: dto.IsMakeupClass == 1,
			Weekday:  dto.DayOfTheWeek,
		}

		var err error
		if entry.Start, err = access.ParseTimeOfDay(dto.ClassStart); err != nil {
			return nil, fmt.Errorf("schedule class_start: %w", err)
		}

		if entry.End, err = access.ParseTimeOfDay(dto.ClassEnd); err != nil {
			return nil, fmt.Errorf("schedule class_end: %w", err)
		}

		// Makeup entries must carry their one-off date; regular entries
		// often carry "N/A" here, which is ignored.
		if entry.IsMakeup {
			if entry.SpecificDate, err = access.ParseDate(dto.SpecificDate); err != nil {
				return nil, fmt.Errorf("schedule specific_date: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// CurrentMoment fetches the backend's current weekday and wall-clock time.
// The calendar date comes from the station clock, as the backend's
// date-time feed does not expose it.
func (c *Client) CurrentMoment(ctx context.Context) (access.Moment, error) {
	var payload struct {
		DayOfWeek   string `json:"day_of_week"`
		CurrentTime string `json:"current_time"`
	}

	if err := c.getJSON(ctx, "/current-date-time", nil, &payload); err != nil {
		return access.Moment{}, err
	}

	if payload.DayOfWeek == "" || payload.CurrentTime == "" {
		return access.Moment{}, fmt.Errorf("%w: day_of_week/current_time", errMissingField)
	}

	now, err := access.ParseTimeOfDay(payload.CurrentTime)
	if err != nil {
		return access.Moment{}, fmt.Errorf("current_time: %w", err)
	}

	return access.Moment{
		Date:    access.DateOf(time.Now()),
		Weekday: payload.DayOfWeek,
		Time:    now,
	}, nil
}

// recordDTO is the wire shape of one attendance log row.
type recordDTO struct {
	Date          string `json:"date"`
	UserName      string `json:"user_name"`
	TimeIn        string `json:"time_in"`
	TimeOut       string `json:"time_out"`
	UID           string `json:"UID"`
	FingerprintID string `json:"fingerprint_id"`
}

// toRecord validates a log row into a domain record.
func (dto recordDTO) toRecord() (access.AttendanceRecord, error) {
	rec := access.AttendanceRecord{
		Channel:     access.ChannelRFID,
		SubjectKey:  dto.UID,
		SubjectName: dto.UserName,
	}

	if dto.UID == "" && dto.FingerprintID != "" {
		rec.Channel = access.ChannelFingerprint
		rec.SubjectKey = dto.FingerprintID
	}

	if dto.Date != "" {
		date, err := access.ParseDate(dto.Date)
		if err != nil {
			return access.AttendanceRecord{}, fmt.Errorf("log date: %w", err)
		}

		rec.Date = date
	}

	timeIn, err := access.ParseTimeOfDay(dto.TimeIn)
	if err != nil {
		return access.AttendanceRecord{}, fmt.Errorf("log time_in: %w", err)
	}

	rec.TimeIn = timeIn

	if dto.TimeOut != "" {
		timeOut, err := access.ParseTimeOfDay(dto.TimeOut)
		if err != nil {
			return access.AttendanceRecord{}, fmt.Errorf("log time_out: %w", err)
		}

		rec.TimeOut = &timeOut
	}

	return rec, nil
}

// OpenRecord returns the subject's open attendance record, or nil when the
// subject has no session in progress.
func (c *Client) OpenRecord(ctx context.Context, subject *access.Subject) (*access.AttendanceRecord, error) {
	var (
		path  string
		query url.Values
	)

	if subject.Channel == access.ChannelFingerprint {
		path = "/recent-logs/by-fingerid"
		query = url.Values{"fingerprint_id": {subject.Key}}
	} else {
		path = "/recent-logs/by-uid"
		query = url.Values{"rfid_number": {subject.Key}}
	}

	var payload []recordDTO
	if err := c.getJSON(ctx, path, query, &payload); err != nil {
		return nil, err
	}

	for _, dto := range payload {
		// Open means time-in present with no time-out yet.
		if dto.TimeIn == "" || dto.TimeOut != "" {
			continue
		}

		rec, err := dto.toRecord()
		if err != nil {
			return nil, err
		}

		return &rec, nil
	}

	return nil, nil
}

// RecordTimeIn opens a new attendance session for the subject at the given time.
func (c *Client) RecordTimeIn(ctx context.Context, subject *access.Subject, timeIn access.TimeOfDay) error {
	var (
		path  string
		query url.Values
	)

	if subject.Channel == access.ChannelFingerprint {
		path = "/logs/time-in/fingerprint"
		query = url.Values{
			"fingerprint_id": {subject.Key},
			"time_in":        {timeIn.String()},
			"user_name":      {subject.Name},
			"role_id":        {roleIDFaculty},
		}
	} else {
		path = "/logs/time-in"
		query = url.Values{
			"rfid_number": {subject.Key},
			"time_in":     {timeIn.String()},
			"user_name":   {subject.Name},
			"role_id":     {roleIDStudent},
		}
	}

	return c.put(ctx, path, query)
}

// RecordTimeOut closes the open session identified by channel and key at the given time.
func (c *Client) RecordTimeOut(ctx context.Context, channel access.Channel, key string, timeOut access.TimeOfDay) error {
	var (
		path  string
		query url.Values
	)

	if channel == access.ChannelFingerprint {
		path = "/logs/time-out/fingerprint"
		query = url.Values{
			"fingerprint_id": {key},
			"time_out":       {timeOut.String()},
		}
	} else {
		path = "/logs/time-out"
		query = url.Values{
			"rfid_number": {key},
			"time_out":    {timeOut.String()},
		}
	}

	return c.put(ctx, path, query)
}

// OpenRecords returns every open attendance record system-wide.
func (c *Client) OpenRecords(ctx context.Context) ([]access.AttendanceRecord, error) {
	var payload []recordDTO
	if err := c.getJSON(ctx, "/recent-logs", nil, &payload); err != nil {
		return nil, err
	}

	var open []access.AttendanceRecord

	for _, dto := range payload {
		if dto.TimeIn == "" || dto.TimeOut != "" {
			continue
		}

		rec, err := dto.toRecord()
		if err != nil {
			return nil, err
		}

		open = append(open, rec)
	}

	return open, nil
}

// RecentRecords returns the latest attendance rows for the station display.
// Rows with unparseable clock values are skipped rather than failing the
// whole view.
func (c *Client) RecentRecords(ctx context.Context) ([]access.AttendanceRecord, error) {
	var payload []recordDTO
	if err := c.getJSON(ctx, "/recent-logs", nil, &payload); err != nil {
		return nil, err
	}

	rows := make([]access.AttendanceRecord, 0, len(payload))

	for _, dto := range payload {
		rec, err := dto.toRecord()
		if err != nil {
			continue
		}

		rows = append(rows, rec)
	}

	return rows, nil
}

// LatestStatus returns the door status of the newest backend log entry.
func (c *Client) LatestStatus(ctx context.Context) (access.RemoteStatus, error) {
	var payload struct {
		Logs []struct {
			Status string `json:"status"`
		} `json:"logs"`
	}

	if err := c.getJSON(ctx, "/logs", nil, &payload); err != nil {
		return access.StatusClose, err
	}

	if len(payload.Logs) == 0 {
		return access.StatusClose, fmt.Errorf("%w: logs", errMissingField)
	}

	// Logs arrive in chronological order; the last one is current.
	return access.ParseRemoteStatus(payload.Logs[len(payload.Logs)-1].Status)
}

// RegisterFingerprint binds a stored sensor slot to a directory account.
func (c *Client) RegisterFingerprint(ctx context.Context, email string, slot uint16) error {
	query := url.Values{
		"email":          {email},
		"fingerprint_id": {strconv.FormatUint(uint64(slot), 10)},
	}

	return c.put(ctx, "/users/update-fingerprint", query)
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

// put performs a PUT request and discards the response body.
func (c *Client) put(ctx context.Context, path string, query url.Values) error {
	_, err := c.do(ctx, http.MethodPut, path, query)

	return err
}

// do issues one request and returns the raw body for successful responses.
// A 404 maps to ErrNotFound; any other non-2xx status is an error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: %s %s -> %d", errUnexpectedStatus, method, path, resp.StatusCode)
	}

	return body, nil
}
