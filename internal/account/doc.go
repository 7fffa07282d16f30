// Package account implements self-service account operations.
//
// Register creates member accounts with bcrypt-hashed passwords. Login
// checks credentials and issues a session token; unknown emails and wrong
// passwords produce the same error. UpdateProfile and UpdateAvatar let a
// signed-in user change their own record directly, without review.
package account
