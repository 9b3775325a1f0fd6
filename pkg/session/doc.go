/*
Package session serializes concurrent access to wizard sessions.

A Manager wraps a ports.StateStore with per-session mutexes (reference
counted, so idle sessions hold no memory) and, optionally, a distributed lock
for deployments with several replicas. Update is the read-modify-write
primitive the HTTP and MCP adapters build on; Watch streams the resulting
state diffs.
*/
package session
