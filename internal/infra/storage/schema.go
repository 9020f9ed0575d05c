package storage

import (
	"fmt"
	"strconv"
)

// Collection names declared by the default schema.
const (
	CollCalendar        = "calendar"
	CollPersonalization = "personalization"
	CollGlowUp          = "glowup"
	CollSettings        = "settings"
	CollSavedLooks      = "savedLooks"
)

// Store identity.
const (
	DefaultStoreName    = "newYouClosetDB"
	DefaultStoreVersion = 2
)

// Record is a single JSON object stored in a collection.
type Record map[string]any

// Key returns the string form of the record's primary key field.
func (r Record) Key(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch k := v.(type) {
	case string:
		return k, k != ""
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64), true
	case int:
		return strconv.Itoa(k), true
	case int64:
		return strconv.FormatInt(k, 10), true
	case fmt.Stringer:
		s := k.String()
		return s, s != ""
	default:
		return fmt.Sprint(k), true
	}
}

// Collection declares a named collection and its primary key field.
type Collection struct {
	Name     string
	KeyField string
}

// Schema is the declared set of collections for a store.
type Schema struct {
	Name        string
	Version     int
	Collections []Collection
}

// DefaultSchema returns the application store layout.
func DefaultSchema() Schema {
	return Schema{
		Name:    DefaultStoreName,
		Version: DefaultStoreVersion,
		Collections: []Collection{
			{Name: CollCalendar, KeyField: "id"},
			{Name: CollPersonalization, KeyField: "key"},
			{Name: CollGlowUp, KeyField: "id"},
			{Name: CollSettings, KeyField: "key"},
			{Name: CollSavedLooks, KeyField: "id"},
		},
	}
}

// Lookup finds a declared collection by name.
func (s Schema) Lookup(name string) (Collection, bool) {
	for _, c := range s.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}
