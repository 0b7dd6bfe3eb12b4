// Package backend implements the REST client for the remote attendance
// backend: directory lookups, schedule and current-time queries, the
// attendance log, and the door-status feed.
//
// All responses are validated at this boundary: clock values must be
// zero-padded 24-hour "HH:MM" strings and dates "YYYY-MM-DD"; anything
// malformed surfaces as an error so the decision layers fail closed
// instead of comparing garbage.
package backend
