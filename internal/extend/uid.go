package extend

import (
	"context"

	"github.com/google/uuid"
)

// uidNamespace seeds name-based UUIDs so identical resource paths in
// different projects still hash to the same value.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mdxlayout:resource"))

// UID contributes a deterministic UUIDv5 derived from the resource path.
// Pages without a resource path get no uid.
type UID struct{}

func (UID) Extend(_ context.Context, in Input) (map[string]any, error) {
	if in.ResourcePath == "" {
		return map[string]any{}, nil
	}
	return map[string]any{
		"uid": uuid.NewSHA1(uidNamespace, []byte(in.ResourcePath)).String(),
	}, nil
}
