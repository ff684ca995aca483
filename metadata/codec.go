package metadata

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Canonical mode keeps encodings deterministic, so equal snapshots produce
// equal blobs.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("metadata: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal encodes v as canonical CBOR.
func Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal decodes CBOR data into out.
func Unmarshal(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("metadata: unmarshal: %w", err)
	}
	return nil
}
