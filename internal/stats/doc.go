// Package stats derives streak and completion numbers from a habit record.
//
// Every function is pure: the caller supplies the reference moment, and the
// calendar date of that moment in its own location is "today".
package stats
