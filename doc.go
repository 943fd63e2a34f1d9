// Package auth implements the FridgeApp authentication gateway: password
// secrecy, signed-token issuance, and the registration/email-verification
// lifecycle on top of the remote user record store.
//
// Account lifecycle:
//   - Register creates a pending user record plus a one-day activation token
//     and mails the activation link. When the mail cannot be delivered the
//     freshly created record is deleted again, so a pending account always
//     has a reachable inbox behind it.
//   - VerifyEmail consumes the activation token by flipping the record to
//     verified. The transition is terminal; presenting the token a second
//     time is an error, not a no-op.
//   - Login verifies credentials for verified accounts and returns a
//     seven-day HS256 JWT carrying the clean user projection.
//
// All records live in the external user store reached through UserStore; the
// package holds no state beyond its immutable configuration, so concurrent
// requests are fully independent.
package auth
