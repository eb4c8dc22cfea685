// Package fallback keeps the last successful response per key so a
// degraded-but-available answer can be served when the live call path
// fails. It is consulted only after a live attempt fails, never ahead of
// one.
package fallback
