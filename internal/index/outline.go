// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"sort"
	"strconv"

	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// maxOutlineLabel bounds reference labels in the outline.
const maxOutlineLabel = 80

// Outline groups the index for a navigation sidebar. Each group is
// deduplicated and sorted by page, then y-position. References outside the
// valid number range are dropped.
func (d *DocumentIndex) Outline() types.Outline {
	var out types.Outline
	for _, loc := range d.Locations() {
		e := types.OutlineEntry{
			ID:         loc.NormalizedID,
			Label:      loc.Caption,
			PageNumber: loc.PageNumber,
			Y:          loc.Y,
		}
		if loc.Type != types.MatchSection && loc.Caption != "" && loc.Caption != loc.RawID {
			e.Label = loc.RawID + ": " + loc.Caption
		}
		switch loc.Type {
		case types.MatchSection:
			out.Sections = append(out.Sections, e)
		case types.MatchFigure, types.MatchAlgorithm:
			out.Figures = append(out.Figures, e)
		case types.MatchTable:
			out.Tables = append(out.Tables, e)
		case types.MatchEquation:
			out.Equations = append(out.Equations, e)
		}
	}

	seen := make(map[int]bool)
	for _, r := range d.references {
		if !r.Valid() || seen[r.Number] {
			continue
		}
		seen[r.Number] = true
		out.References = append(out.References, types.OutlineEntry{
			ID:         "ref-" + strconv.Itoa(r.Number),
			Label:      "[" + strconv.Itoa(r.Number) + "] " + referenceLabel(r),
			PageNumber: r.PageNumber,
		})
	}

	for _, group := range [][]types.OutlineEntry{out.Sections, out.Figures, out.Tables, out.Equations, out.References} {
		sortEntries(group)
	}
	return out
}

func referenceLabel(r types.ParsedReference) string {
	switch {
	case r.Title != nil:
		return pattern.Truncate(*r.Title, maxOutlineLabel)
	case r.Authors != nil:
		return pattern.Truncate(*r.Authors, maxOutlineLabel)
	default:
		return pattern.Truncate(r.RawText, maxOutlineLabel)
	}
}

func sortEntries(entries []types.OutlineEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PageNumber != entries[j].PageNumber {
			return entries[i].PageNumber < entries[j].PageNumber
		}
		return entries[i].Y < entries[j].Y
	})
}
