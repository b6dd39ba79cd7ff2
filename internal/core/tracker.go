package core

import "sync"

// ResponseRecord associates one sent response with the invocation that
// triggered it.
type ResponseRecord struct {
	InvocationID string // ID of the triggering message
	ChannelID    string // channel the response was delivered to
	MessageID    string // ID of the response message
}

// ResponseTracker remembers which outbound messages answered which
// invocation. One tracker lives for the whole bot process and is shared by
// every in-flight execution; registration is append-only and safe under
// concurrent writers.
type ResponseTracker struct {
	mu      sync.RWMutex
	records map[string][]ResponseRecord
}

func NewResponseTracker() *ResponseTracker {
	return &ResponseTracker{records: make(map[string][]ResponseRecord)}
}

// Register appends one record for an invocation. Called once per successful
// send; a failed send never reaches here.
func (t *ResponseTracker) Register(invocationID, channelID, messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[invocationID] = append(t.records[invocationID], ResponseRecord{
		InvocationID: invocationID,
		ChannelID:    channelID,
		MessageID:    messageID,
	})
}

// Records returns a copy of the records registered for an invocation.
func (t *ResponseTracker) Records(invocationID string) []ResponseRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]ResponseRecord(nil), t.records[invocationID]...)
}

// Forget drops all records for an invocation. The owning client calls this
// once the association is no longer needed, e.g. after cleaning up the
// responses to a deleted trigger.
func (t *ResponseTracker) Forget(invocationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, invocationID)
}
