package registration

import (
	"encoding/json"
	"fmt"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/store"
)

// List names a list field inside the documents of a collection.
type List struct {
	Collection string
	// Field is the top-level array field holding the entries.
	Field string
	// KeyField is the entry field compared by Register and Unregister.
	// Append-only lists leave it empty.
	KeyField string
}

// Lists managed by the application.
var (
	Participants = List{Collection: store.CollectionCompetitions, Field: "participants", KeyField: "username"}
	Newsletter   = List{Collection: store.CollectionReviews, Field: "newsletter_email_list", KeyField: "email"}
	Reviews      = List{Collection: store.CollectionReviews, Field: "general_reviews"}
)

func (l List) String() string {
	return l.Collection + "." + l.Field
}

// Entries is a list field with each entry still encoded.
type Entries []json.RawMessage

// DecodeEntries decodes every entry into T.
func DecodeEntries[T any](entries Entries) ([]T, error) {
	out := make([]T, 0, len(entries))
	for i, raw := range entries {
		var v T
		if err := store.Decode(raw, &v); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// entriesOf reads the list field; a missing or null field is an empty list.
func entriesOf(fields store.Fields, field string) (Entries, error) {
	raw, ok := fields[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return Entries{}, nil
	}
	var entries Entries
	if err := store.Decode(raw, &entries); err != nil {
		return nil, fmt.Errorf("field %s is not a list: %w", field, err)
	}
	if entries == nil {
		entries = Entries{}
	}
	return entries, nil
}

// indexOf returns the position of the first entry whose key folds to key, or -1.
func indexOf(entries Entries, keyField, key string) int {
	for i, raw := range entries {
		fields, err := store.DecodeFields(raw)
		if err != nil {
			continue
		}
		existing, ok := fields.String(keyField)
		if ok && domain.NormalizeKey(existing) == key {
			return i
		}
	}
	return -1
}

// encodeEntry encodes entry, storing the normalized key in keyField when set.
func encodeEntry(entry any, keyField, key string) (json.RawMessage, error) {
	data, err := store.Encode(entry)
	if err != nil {
		return nil, err
	}
	if keyField == "" {
		return data, nil
	}

	fields, err := store.DecodeFields(data)
	if err != nil {
		return nil, err
	}
	if err := fields.Set(keyField, key); err != nil {
		return nil, err
	}
	return fields.Encode()
}
