// Package schedule decides whether a subject is authorized at a moment in
// time.
//
// A subject with any makeup entry is evaluated against makeup entries only;
// otherwise regular weekday entries apply. Both window ends are inclusive.
// Any failure while fetching or validating schedules denies access.
package schedule
