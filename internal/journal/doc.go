// Package journal implements per-user campaign notes, their structured
// value fields, and point trackers.
//
// Everything in this package is owner-scoped: users only ever see and
// modify their own notes and trackers. Value fields hang off a note and
// are deleted with it.
package journal
