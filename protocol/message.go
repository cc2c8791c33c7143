// File: protocol/message.go
// Author: momentics <momentics@gmail.com>
//
// Wire message schema: registration, text and file shapes. All JSON is
// flat (field values are never nested objects), which is what keeps the
// naive bracket Framer correct in practice (see framer.go).

package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Message types.
const (
	TypeText = "text"
	TypeFile = "file"
)

// Well-known sender/recipient roles.
const (
	RoleClient = "client"
	RoleServer = "server"
)

// File sub-message kinds.
const (
	FileMsgMetadata = "metadata"
	FileMsgData     = "data"
)

// TextMessage is the shape of every `"type":"text"` object: the
// registration message (sender == "client", content is the username)
// and chat payloads (content is Base64 of UTF-8 text) share this same
// struct.
type TextMessage struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
}

// FileMessage is the shape of every `"type":"file"` object: both the
// metadata step and the data step use it, distinguished by MsgType.
type FileMessage struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	MsgType   string `json:"msg_type"`
	Content   string `json:"content"`
}

// envelopeType peeks at just the "type" discriminator without
// committing to either concrete struct.
type envelopeType struct {
	Type string `json:"type"`
}

// ParseType reports the "type" field of a framed JSON object, or an
// error if it isn't valid JSON.
func ParseType(frame []byte) (string, error) {
	var e envelopeType
	if err := json.Unmarshal(frame, &e); err != nil {
		return "", fmt.Errorf("protocol: malformed frame: %w", err)
	}
	return e.Type, nil
}

// NowTimestamp renders t as the decimal-milliseconds-since-epoch string
// the wire protocol uses for "timestamp".
func NowTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// NewBroadcastText builds the server-to-client broadcast object: sender
// is the stored username for the origin fd, timestamp is "now", content
// is carried through verbatim (it is already Base64 from the client).
func NewBroadcastText(sender, content string, now time.Time) TextMessage {
	return TextMessage{
		Type:      TypeText,
		Sender:    sender,
		Recipient: RoleClient,
		Timestamp: NowTimestamp(now),
		Content:   content,
	}
}
