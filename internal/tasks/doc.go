// Package tasks implements the shared task board.
//
// Any signed-in user can list, create, read, update and delete tasks.
// The creator and the last editor are taken from the session, never from
// the request body. Single-task reads include the description rendered
// from markdown to HTML.
package tasks
