package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/surfacegen/genapi/internal/metadata"
)

// IncludeAllFilter keeps the assembly-internal surface as well as the public one.
// Only private members and nested types are dropped.
type IncludeAllFilter struct {
	includeForwardedTypes bool
}

// NewIncludeAllFilter creates a filter that also keeps internal definitions
func NewIncludeAllFilter(includeForwardedTypes bool) *IncludeAllFilter {
	return &IncludeAllFilter{includeForwardedTypes: includeForwardedTypes}
}

// IncludeForwardedTypes reports the forwarded-types setting
func (f *IncludeAllFilter) IncludeForwardedTypes() bool { return f.includeForwardedTypes }

// IncludeNamespace implements Filter
func (f *IncludeAllFilter) IncludeNamespace(ns *metadata.Namespace) bool {
	return anyTypeIncluded(f, ns, f.includeForwardedTypes)
}

// IncludeType implements Filter
func (f *IncludeAllFilter) IncludeType(t *metadata.TypeDefinition) bool {
	if t == nil || t == metadata.DummyType {
		return false
	}
	for cur := t; cur != nil; cur = cur.DeclaringType {
		if cur.DeclaringType != nil && cur.Visibility == metadata.VisibilityPrivate {
			return false
		}
	}
	return true
}

// IncludeMember implements Filter
func (f *IncludeAllFilter) IncludeMember(m metadata.Member) bool {
	if m == nil || !f.IncludeType(m.ContainingType()) {
		return false
	}
	return m.MemberVisibility() != metadata.VisibilityPrivate
}

// IncludeAttribute implements Filter
func (f *IncludeAllFilter) IncludeAttribute(a *metadata.CustomAttribute) bool {
	return a != nil && f.IncludeType(metadata.ResolveType(a.Type))
}

// ExcludeListFilter drops definitions whose documentation ids are listed and
// defers every other decision to the wrapped filter.
type ExcludeListFilter struct {
	inner Filter
	ids   map[string]struct{}
}

// NewExcludeListFilter wraps inner with a fixed set of excluded documentation ids
func NewExcludeListFilter(inner Filter, ids []string) *ExcludeListFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &ExcludeListFilter{inner: inner, ids: set}
}

// LoadExcludeList reads documentation ids, one per line. Blank lines and lines
// starting with '#' are ignored; anything after the id on a line is a comment.
func LoadExcludeList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exclude list: %w", err)
	}
	defer f.Close()
	return ParseExcludeList(f)
}

// ParseExcludeList parses the exclude list format read by LoadExcludeList
func ParseExcludeList(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exclude list: %w", err)
	}
	return ids, nil
}

// IncludeForwardedTypes defers to the wrapped filter
func (f *ExcludeListFilter) IncludeForwardedTypes() bool {
	p, ok := f.inner.(interface{ IncludeForwardedTypes() bool })
	return ok && p.IncludeForwardedTypes()
}

// IncludeNamespace implements Filter
func (f *ExcludeListFilter) IncludeNamespace(ns *metadata.Namespace) bool {
	return anyTypeIncluded(f, ns, f.IncludeForwardedTypes())
}

// IncludeType implements Filter
func (f *ExcludeListFilter) IncludeType(t *metadata.TypeDefinition) bool {
	if t == nil || t == metadata.DummyType {
		return false
	}
	if _, excluded := f.ids[t.DocID()]; excluded {
		return false
	}
	return f.inner.IncludeType(t)
}

// IncludeMember implements Filter
func (f *ExcludeListFilter) IncludeMember(m metadata.Member) bool {
	if m == nil {
		return false
	}
	if _, excluded := f.ids[metadata.MemberDocID(m)]; excluded {
		return false
	}
	return f.inner.IncludeMember(m)
}

// IncludeAttribute implements Filter
func (f *ExcludeListFilter) IncludeAttribute(a *metadata.CustomAttribute) bool {
	if a == nil {
		return false
	}
	if _, excluded := f.ids[metadata.ResolveType(a.Type).DocID()]; excluded {
		return false
	}
	return f.inner.IncludeAttribute(a)
}

// IntersectionFilter includes a definition only if every filter does
type IntersectionFilter []Filter

// IncludeNamespace implements Filter
func (fs IntersectionFilter) IncludeNamespace(ns *metadata.Namespace) bool {
	return anyTypeIncluded(fs, ns, false)
}

// IncludeType implements Filter
func (fs IntersectionFilter) IncludeType(t *metadata.TypeDefinition) bool {
	for _, f := range fs {
		if !f.IncludeType(t) {
			return false
		}
	}
	return true
}

// IncludeMember implements Filter
func (fs IntersectionFilter) IncludeMember(m metadata.Member) bool {
	for _, f := range fs {
		if !f.IncludeMember(m) {
			return false
		}
	}
	return true
}

// IncludeAttribute implements Filter
func (fs IntersectionFilter) IncludeAttribute(a *metadata.CustomAttribute) bool {
	for _, f := range fs {
		if !f.IncludeAttribute(a) {
			return false
		}
	}
	return true
}
