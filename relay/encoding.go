package relay

import (
	"encoding/json"
	"fmt"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
)

// MarshalJSON encodes a DetectedEntry as a two-element [tag, ciphertext]
// array, the on-the-wire shape for a relay's detected_tags response.
func (d DetectedEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{&d.Tag, &d.Ciphertext})
}

// UnmarshalJSON decodes the [tag, ciphertext] array form produced by MarshalJSON.
func (d *DetectedEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("relay: malformed detected tag entry: %w", err)
	}

	var tag fmd.Tag
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return fmt.Errorf("relay: malformed detected tag entry: %w", err)
	}
	var ct hybrid.TaggedCiphertext
	if err := json.Unmarshal(pair[1], &ct); err != nil {
		return fmt.Errorf("relay: malformed detected tag entry: %w", err)
	}

	d.Tag = tag
	d.Ciphertext = ct
	return nil
}
