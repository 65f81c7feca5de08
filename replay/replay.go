// Package replay restores, as a structured capture/replay capability, the
// debug-print visibility the original implementation got from ad hoc DBG
// statements scattered through the simulation and RTTrP code paths. Every
// received RTTrP packet can be recorded as a bencode-encoded, correlation-id
// tagged line and later replayed for offline inspection.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anacrolix/torrent/bencode"
	"github.com/mitchellh/mapstructure"
	ben "github.com/stefanovazzocell/bencode"

	"github.com/rttrpmbridge/core/rttrpm"
)

// Entry is one recorded packet: enough to reconstruct what was received and
// when, without carrying the full decoded module tree.
type Entry struct {
	CorrelationID  string `bencode:"id" mapstructure:"id"`
	SenderIP       string `bencode:"ip" mapstructure:"ip"`
	SenderPort     int    `bencode:"port" mapstructure:"port"`
	TrackableCount int    `bencode:"trackables" mapstructure:"trackables"`
}

func entryFromMessage(msg rttrpm.Message) Entry {
	return Entry{
		CorrelationID:  msg.ID.String(),
		SenderIP:       msg.SenderIP,
		SenderPort:     msg.SenderPort,
		TrackableCount: len(msg.Packet.Trackables),
	}
}

// Recorder appends one bencoded Entry per line to an underlying writer.
// Safe for concurrent use by multiple rttrpm.Receiver goroutines, grounded
// on the teacher's cookie-prefixed EncodeComando framing (correlation id
// first, payload second, so a line can be associated with its request
// without parsing the bencode first).
type Recorder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRecorder wraps w; every call to Record appends exactly one line.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Record encodes msg as a bencoded Entry and appends it to the underlying
// writer, prefixed by its correlation id. It satisfies rttrpm.Recorder.
func (r *Recorder) Record(msg rttrpm.Message) error {
	entry := entryFromMessage(msg)

	payload, err := bencode.Marshal(entry)
	if err != nil {
		return fmt.Errorf("replay: marshal entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = fmt.Fprintf(r.w, "%s %s\n", entry.CorrelationID, payload)
	if err != nil {
		return fmt.Errorf("replay: write entry: %w", err)
	}
	return nil
}

// Reader reads back Entry records written by a Recorder.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r for line-at-a-time replay.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next recorded Entry. ok is false once the underlying
// reader is exhausted; err is non-nil only on a malformed line or a read
// failure.
func (rd *Reader) Next() (Entry, bool, error) {
	if !rd.scanner.Scan() {
		return Entry{}, false, rd.scanner.Err()
	}

	line := rd.scanner.Text()
	correlationID, payload, found := strings.Cut(line, " ")
	if !found {
		return Entry{}, false, errors.New("replay: malformed line: missing correlation id separator")
	}

	parsed, err := ben.NewParserFromString(payload).AsDict()
	if err != nil {
		return Entry{}, false, fmt.Errorf("replay: parse bencode payload: %w", err)
	}

	var entry Entry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &entry,
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("replay: build decoder: %w", err)
	}
	if err := decoder.Decode(parsed); err != nil {
		return Entry{}, false, fmt.Errorf("replay: decode entry: %w", err)
	}
	entry.CorrelationID = correlationID

	return entry, true, nil
}
