// Package client contains the client-side building blocks for talking to
// the leads backend.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface): Me, Login, Register,
//     Logout, the lead listing and mutation calls, and Ping.
//  2. A REST implementation (see HTTPClient) that stamps each request with
//     an X-Request-ID, keeps the session cookie in a CredentialScope handed
//     over at construction, and maps HTTP statuses to sentinel errors.
//  3. PersistentJar, a CredentialScope that survives restarts by mirroring
//     cookies into a CookieStore.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Every non-2xx
// response is an *APIError carrying the backend message.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All calls accept a context.Context
// and honor its cancellation. No request is retried.
package client
