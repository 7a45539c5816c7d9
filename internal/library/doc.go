// Package library implements the token image library: a folder tree of
// reusable token assets the GM places onto scenes.
package library
