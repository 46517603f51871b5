package relay

import (
	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
)

// PostMessageRequest is the body of POST /new.
type PostMessageRequest struct {
	Tag        fmd.Tag                 `json:"tag"`
	Ciphertext hybrid.TaggedCiphertext `json:"ciphertext"`
}

// PostMessageResponse is the body returned by POST /new. Tag holds the
// string representation of the posted tag on success, or "error" if the
// relay could not store the entry.
type PostMessageResponse struct {
	Tag string `json:"tag"`
}

// FetchMessagesRequest is the body of POST /tags. ReferenceTag is the
// client's cursor: when present, the relay returns only entries strictly
// newer than the most recent entry whose tag bytes match it. When nil,
// the relay returns its entire log, filtered by DetectionKey.
type FetchMessagesRequest struct {
	ReferenceTag *fmd.Tag         `json:"reference_tag,omitempty"`
	DetectionKey fmd.DetectionKey `json:"detection_key"`
}

// DetectedEntry pairs a relay-stored tag with its ciphertext, in the
// two-element-array shape the wire protocol uses.
type DetectedEntry struct {
	Tag        fmd.Tag
	Ciphertext hybrid.TaggedCiphertext
}

// FetchMessagesResponse is the body returned by POST /tags.
type FetchMessagesResponse struct {
	DetectedTags []DetectedEntry `json:"detected_tags"`
}
