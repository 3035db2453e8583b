package reconcile

import (
	"errors"
	"fmt"

	"github.com/appkivawa/pulseboard/app/database"
)

// ErrReconciliation marks a failed resolution. It blocks only the save action
// that triggered it; callers surface it rather than dropping the save silently.
var ErrReconciliation = errors.New("failed to reconcile content id")

// Fields carries the denormalized item fields used to materialize a durable
// record on first use.
type Fields struct {
	Title    string
	URL      string
	ImageURL string
	Kind     string
	Provider string
}

// Reconciler resolves possibly-ephemeral upstream ids to durable content ids
// via lookup-or-create. Resolution is idempotent per (namespace, external_id):
// the store's uniqueness constraint guarantees at most one durable record even
// under concurrent invocation.
type Reconciler struct {
	contentRepo database.ContentRepository
}

func NewReconciler(contentRepo database.ContentRepository) *Reconciler {
	return &Reconciler{contentRepo: contentRepo}
}

// Resolve returns the durable id for a ref. A DurableID passes through
// unchanged; an EphemeralRef is looked up by its upstream identity and a
// durable record is created on first use.
func (r *Reconciler) Resolve(ref Ref, fields Fields) (DurableID, error) {
	switch ref := ref.(type) {
	case DurableID:
		return ref, nil

	case EphemeralRef:
		existing, err := r.contentRepo.GetContentByExternalID(ref.Namespace, ref.ExternalID)
		if err != nil {
			return "", fmt.Errorf("%w: lookup failed: %v", ErrReconciliation, err)
		}
		if existing != nil {
			return DurableID(existing.ID), nil
		}

		if fields.Title == "" {
			return "", fmt.Errorf("%w: title is required to create a durable record", ErrReconciliation)
		}

		id, err := r.contentRepo.CreateContent(database.NewContent{
			Namespace:  ref.Namespace,
			ExternalID: ref.ExternalID,
			Title:      fields.Title,
			URL:        fields.URL,
			ImageURL:   fields.ImageURL,
			Kind:       fields.Kind,
			Provider:   fields.Provider,
		})
		if err != nil {
			return "", fmt.Errorf("%w: create failed: %v", ErrReconciliation, err)
		}

		return DurableID(id), nil

	default:
		return "", fmt.Errorf("%w: unknown ref type %T", ErrReconciliation, ref)
	}
}
