// Package profile implements the profile change request workflow.
//
// A signed-in user submits proposed first and last names. The request
// stays pending until an admin approves or rejects it. Approval copies the
// names onto the user in the same transaction as the status change, and a
// request can be reviewed only once. Each review is written to the audit
// log and traced with OpenTelemetry when a tracer provider is installed.
package profile
