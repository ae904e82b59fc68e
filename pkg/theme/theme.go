// Package theme resolves project and tag titles to chart colors and icons.
//
// The lookup tables are built once per render cycle from the raw snapshot.
// Resolution is total: any title not present in the source data falls back
// to the defaults, never to an error.
package theme

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/spdash/pkg/model"
)

// Defaults applied when an entity has no usable theme or icon.
const (
	DefaultColor       = "#636efa"
	DefaultProjectIcon = "📁"
	DefaultTagIcon     = "🏷️"
	UntaggedColor      = "grey"
)

// Resolver maps project and tag titles to their theme color and icon.
type Resolver struct {
	projectColors map[string]string
	projectIcons  map[string]string
	tagColors     map[string]string
	tagIcons      map[string]string
}

// NewResolver scans the snapshot's project and tag collections once and
// builds the title-keyed lookup tables. Entities are visited in sorted-id
// order, so when two entities share a title the one with the greater id
// wins deterministically.
func NewResolver(snap *model.Snapshot) *Resolver {
	r := &Resolver{
		projectColors: make(map[string]string),
		projectIcons:  make(map[string]string),
		tagColors:     make(map[string]string),
		tagIcons:      make(map[string]string),
	}

	projects := snap.Projects()
	for _, id := range sortedKeys(projects) {
		p := projects[id]
		r.projectColors[p.Title] = primaryColor(p.Theme)
		r.projectIcons[p.Title] = p.Icon
	}

	tags := snap.Tags()
	for _, id := range sortedKeys(tags) {
		t := tags[id]
		r.tagColors[t.Title] = primaryColor(t.Theme)
		r.tagIcons[t.Title] = t.Icon
	}

	return r
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// primaryColor keeps the theme primary only when it looks like a hex color.
func primaryColor(t model.Theme) string {
	if strings.HasPrefix(t.Primary, "#") {
		return t.Primary
	}
	return DefaultColor
}

// ProjectColor returns the project's theme color, or the default blue.
func (r *Resolver) ProjectColor(title string) string {
	if c, ok := r.projectColors[title]; ok {
		return c
	}
	return DefaultColor
}

// TagColor returns the tag's theme color, or the default blue.
func (r *Resolver) TagColor(title string) string {
	if c, ok := r.tagColors[title]; ok {
		return c
	}
	return DefaultColor
}

// ProjectIcon returns the project's icon, or the folder glyph.
func (r *Resolver) ProjectIcon(title string) string {
	if icon := r.projectIcons[title]; icon != "" {
		return icon
	}
	return DefaultProjectIcon
}

// TagIcon returns the tag's icon, or the tag glyph.
func (r *Resolver) TagIcon(title string) string {
	if icon := r.tagIcons[title]; icon != "" {
		return icon
	}
	return DefaultTagIcon
}

// ProjectDisplayName is the icon followed by the title.
func (r *Resolver) ProjectDisplayName(title string) string {
	return r.ProjectIcon(title) + " " + title
}

// TagDisplayName is the icon followed by the title.
func (r *Resolver) TagDisplayName(title string) string {
	return r.TagIcon(title) + " " + title
}

// ProjectPalette resolves a color per project title, in order.
func (r *Resolver) ProjectPalette(titles []string) []string {
	colors := make([]string, len(titles))
	for i, title := range titles {
		colors[i] = r.ProjectColor(title)
	}
	return colors
}

// TagPalette resolves a color per tag title, in order.
func (r *Resolver) TagPalette(titles []string) []string {
	colors := make([]string, len(titles))
	for i, title := range titles {
		colors[i] = r.TagColor(title)
	}
	return colors
}
