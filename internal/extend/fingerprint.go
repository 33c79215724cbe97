package extend

import (
	"context"

	"github.com/inful/mdfp"
)

// Fingerprint contributes a stable content hash of the page body under
// mdfp.FingerprintField.
type Fingerprint struct{}

func (Fingerprint) Extend(_ context.Context, in Input) (map[string]any, error) {
	return map[string]any{
		mdfp.FingerprintField: mdfp.CalculateFingerprintFromParts("", in.Content),
	}, nil
}
