package erasure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultKeyColumn is used when a target does not name its key column.
const DefaultKeyColumn = "user_id"

// Target is a collection holding account data and the column that
// references the account's user id.
type Target struct {
	Collection string
	KeyColumn  string
}

func (t Target) String() string {
	return fmt.Sprintf("%s(%s)", t.Collection, t.KeyColumn)
}

// DefaultTargets returns the collections erased when none are configured,
// in the order they are deleted. Profiles are keyed by the user id itself
// and go last.
func DefaultTargets() []Target {
	return []Target{
		{Collection: "JournalEntries", KeyColumn: "user_id"},
		{Collection: "insights_summary", KeyColumn: "user_id"},
		{Collection: "insights_counts", KeyColumn: "user_id"},
		{Collection: "insights_weekly", KeyColumn: "user_id"},
		{Collection: "insights_monthly", KeyColumn: "user_id"},
		{Collection: "insights_top5_casts", KeyColumn: "user_id"},
		{Collection: "profiles", KeyColumn: "id"},
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseTargets parses "collection[:key_column]" entries, keeping their order.
//
// Blank entries are skipped. With no entries at all, DefaultTargets is returned.
func ParseTargets(entries []string) ([]Target, error) {
	entries = lo.Filter(lo.Map(entries, func(entry string, _ int) string {
		return strings.TrimSpace(entry)
	}), func(entry string, _ int) bool {
		return entry != ""
	})

	if len(entries) == 0 {
		return DefaultTargets(), nil
	}

	targets := make([]Target, 0, len(entries))
	for _, entry := range entries {
		collection, keyColumn, found := strings.Cut(entry, ":")
		collection = strings.TrimSpace(collection)
		keyColumn = strings.TrimSpace(keyColumn)
		if !found {
			keyColumn = DefaultKeyColumn
		}

		if !identifierPattern.MatchString(collection) {
			return nil, fmt.Errorf("deletion target %q: invalid collection name", entry)
		}
		if !identifierPattern.MatchString(keyColumn) {
			return nil, fmt.Errorf("deletion target %q: invalid key column", entry)
		}

		targets = append(targets, Target{Collection: collection, KeyColumn: keyColumn})
	}

	if duplicates := lo.FindDuplicatesBy(targets, func(t Target) string { return t.Collection }); len(duplicates) > 0 {
		return nil, fmt.Errorf("deletion target %q is listed more than once", duplicates[0].Collection)
	}

	return targets, nil
}
