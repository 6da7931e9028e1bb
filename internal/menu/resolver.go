// Package menu resolves free-text item names, as spoken to the waiter
// agent, against the published menu.
package menu

import (
	"fmt"
	"strings"

	"comanda-system/internal/domain"
)

// Resolve maps a free-text name to a menu item in three passes:
// exact case-insensitive match, substring match in either direction,
// then a plural-stripped substring match ("gildas" finds "Gilda").
// A miss returns domain.ErrItemNotFound so the agent can ask the
// customer to clarify instead of inventing a dish.
func Resolve(items []domain.MenuItem, name string) (domain.MenuItem, error) {
	search := strings.ToLower(strings.TrimSpace(name))
	if search == "" {
		return domain.MenuItem{}, fmt.Errorf("resolve %q: %w", name, domain.ErrItemNotFound)
	}

	for _, it := range items {
		if strings.ToLower(it.Name) == search {
			return it, nil
		}
	}

	for _, it := range items {
		lower := strings.ToLower(it.Name)
		if strings.Contains(lower, search) || strings.Contains(search, lower) {
			return it, nil
		}
	}

	singular := strings.TrimSuffix(search, "s")
	singular = strings.TrimSuffix(singular, "es")
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), singular) {
			return it, nil
		}
	}

	return domain.MenuItem{}, fmt.Errorf("resolve %q: %w", name, domain.ErrItemNotFound)
}
