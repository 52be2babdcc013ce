package bridge

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is one entry in the Sengled wire envelope.
//
// Both directions use the same shape: a JSON array of objects carrying the
// device MAC ("dn"), the attribute name ("type"), the value as a string and
// a unix-millisecond timestamp. A status report and a command differ only in
// which topic they travel on.
type Message struct {
	DN    string `json:"dn"`
	Type  string `json:"type"`
	Value string `json:"value"`
	Time  int64  `json:"time"`
}

// EncodeCommand builds the wire payload for a single attribute command.
//
// Parameters:
//   - mac: Target device MAC address
//   - attribute: Attribute name (e.g. "brightness")
//   - value: Attribute value as a string (e.g. "75")
//
// Returns:
//   - []byte: JSON envelope ready to publish
//   - error: Marshalling failure (should not happen for valid input)
func EncodeCommand(mac, attribute, value string) ([]byte, error) {
	envelope := []Message{{
		DN:    mac,
		Type:  attribute,
		Value: value,
		Time:  time.Now().UnixMilli(),
	}}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encoding command envelope: %w", err)
	}
	return payload, nil
}

// DecodeStatus parses a status payload into its valid messages.
//
// Devices batch several attribute reports into one envelope, and firmware
// quirks occasionally produce entries without a MAC or attribute name.
// Invalid entries are counted and skipped rather than failing the whole
// payload.
//
// Parameters:
//   - payload: Raw MQTT message body
//
// Returns:
//   - []Message: Valid messages in envelope order (may be empty)
//   - int: Number of entries dropped for missing dn/type
//   - error: Only when the payload is not a JSON array at all
func DecodeStatus(payload []byte) ([]Message, int, error) {
	var envelope []Message
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decoding status envelope: %w", err)
	}

	messages := make([]Message, 0, len(envelope))
	dropped := 0
	for _, msg := range envelope {
		if msg.DN == "" || msg.Type == "" {
			dropped++
			continue
		}
		messages = append(messages, msg)
	}
	return messages, dropped, nil
}
