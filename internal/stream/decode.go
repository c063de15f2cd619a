package stream

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals the "data" field an Entry carries into dst.
func Decode(e Entry, dst any) error {
	raw, ok := e.Fields["data"]
	if !ok {
		return fmt.Errorf("stream: entry %s has no data field", e.ID)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("stream: decode entry %s: %w", e.ID, err)
	}
	return nil
}
