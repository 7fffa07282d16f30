// Package apperr defines the error kinds services return and how the HTTP
// layer reports them: Unauthenticated 401, Forbidden 403, Validation 400,
// NotFound 404, Conflict 409, RateLimited 429 and Internal 500.
package apperr
