// Package audit records every validation attempt. Entries are queued and
// persisted by a background worker so an audit write can never block or fail
// a validation response.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"vehiclerules/internal/telemetry"
)

// Entry is the immutable record of one validation attempt. Success mirrors
// the verdict's isMatch flag.
type Entry struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	Request       json.RawMessage `json:"request"`
	Response      json.RawMessage `json:"response"`
	MatchedRuleID *string         `json:"matchedRuleId"`
	Success       bool            `json:"success"`
	// Fingerprint is an xxhash of the serialized request, for correlating
	// repeated queries without comparing payloads.
	Fingerprint string `json:"fingerprint"`
}

// NewEntry serializes the request and response and stamps id, time and
// request fingerprint.
func NewEntry(request, response any, matchedRuleID *string, success bool) (Entry, error) {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return Entry{}, err
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Request:       requestJSON,
		Response:      responseJSON,
		MatchedRuleID: matchedRuleID,
		Success:       success,
		Fingerprint:   fingerprint(requestJSON),
	}, nil
}

func fingerprint(requestJSON []byte) string {
	return uint64Hex(xxhash.Sum64(requestJSON))
}

func uint64Hex(v uint64) string {
	const hexDigits = "0123456789abcdef"
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf[:])
}

// Sink persists audit entries.
type Sink interface {
	Write(ctx context.Context, entry Entry) error
}

const writeTimeout = 5 * time.Second

// Recorder queues audit entries for asynchronous persistence. A full queue
// drops the entry (counted in metrics) rather than applying backpressure to
// the validation path.
type Recorder struct {
	sink   Sink
	queue  chan Entry
	stopCh chan struct{}
	done   chan struct{}
	closed int32
}

// NewRecorder creates a recorder and starts its background worker.
func NewRecorder(sink Sink, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		sink:   sink,
		queue:  make(chan Entry, queueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.worker()
	return r
}

// Record queues an entry. Never blocks; a write failure is the worker's
// problem, not the caller's.
func (r *Recorder) Record(entry Entry) {
	select {
	case r.queue <- entry:
	default:
		telemetry.AuditDrops.Inc()
		log.Printf("audit: queue full, dropping entry %s", entry.ID)
	}
}

func (r *Recorder) worker() {
	defer close(r.done)
	for {
		select {
		case entry := <-r.queue:
			r.write(entry)
		case <-r.stopCh:
			// Drain remaining entries before stopping.
			for {
				select {
				case entry := <-r.queue:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.sink.Write(ctx, entry); err != nil {
		log.Printf("audit: failed to write entry %s: %v", entry.ID, err)
	}
}

// Close stops the worker after draining queued entries. Safe to call more
// than once.
func (r *Recorder) Close() error {
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil
	}
	close(r.stopCh)
	<-r.done
	return nil
}
