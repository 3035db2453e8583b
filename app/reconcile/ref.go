package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("unrecognized content id format")

// Ref identifies a content item either by its durable store id or by an
// ephemeral upstream identity. Separating the two as types means a caller
// cannot feed an unresolved upstream id into the saved-items store by
// accident; the only way from an EphemeralRef to a DurableID is through the
// Reconciler.
type Ref interface {
	isRef()
}

// DurableID is a persistent-store-assigned identifier, safe as a long-lived
// foreign key.
type DurableID string

func (DurableID) isRef() {}

// EphemeralRef is an upstream identifier namespaced by its source table, e.g.
// "feed_items:<id>". It is not guaranteed stable across upstream redeployments.
type EphemeralRef struct {
	Namespace  string
	ExternalID string
}

func (EphemeralRef) isRef() {}

// ParseRef classifies a raw item id. Durable ids are UUIDs; anything else must
// carry a "namespace:external_id" prefix.
func ParseRef(raw string) (Ref, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidRef)
	}

	if _, err := uuid.Parse(raw); err == nil {
		return DurableID(raw), nil
	}

	namespace, externalID, ok := strings.Cut(raw, ":")
	if !ok || namespace == "" || externalID == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRef, raw)
	}

	return EphemeralRef{Namespace: namespace, ExternalID: externalID}, nil
}
