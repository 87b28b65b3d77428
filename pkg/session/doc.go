/*
Package session serializes access to conversation sessions.

Every turn for a given session id runs under a per-id mutex, optionally backed by a
distributed lock so several replicas can share one store. Transact hands the caller a
working copy and persists it only when the caller returns it, which is how a turn that
fails mid-way leaves the stored session exactly as it was.
*/
package session
