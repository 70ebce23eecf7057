// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryOption is one entry of a flattened category selector.
type CategoryOption struct {
	ID    int64
	Label string
	Depth int
}

// Options returns every category with its path label, sorted
// alphabetically by label so that children follow their parents
// regardless of depth. Sorting is locale-aware, so Sinhala and Latin
// names each sort in their natural order.
func (ix *Index) Options() []CategoryOption {
	opts := make([]CategoryOption, 0, len(ix.order))
	for _, id := range ix.order {
		chain := ix.Ancestry(id)
		opts = append(opts, CategoryOption{
			ID:    id,
			Label: ix.PathLabel(id),
			Depth: len(chain) - 1,
		})
	}

	col := collate.New(language.Und)
	sort.SliceStable(opts, func(i, j int) bool {
		return col.CompareString(opts[i].Label, opts[j].Label) < 0
	})
	return opts
}
