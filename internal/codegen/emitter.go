package codegen

import (
	"sort"

	"go.uber.org/zap"

	"github.com/surfacegen/genapi/internal/metadata"
)

// Summary counts what an emission wrote
type Summary struct {
	Assembly   string `json:"assembly"`
	Namespaces int    `json:"namespaces"`
	Types      int    `json:"types"`
	Members    int    `json:"members"`
}

// Emitter writes the complete surface of an assembly as one document
type Emitter struct {
	writer *Writer
}

// NewEmitter creates an emitter around a configured writer
func NewEmitter(w *Writer) *Emitter {
	return &Emitter{writer: w}
}

// EmitAssembly writes a header, the assembly-level attributes and every
// included namespace in name order. The output depends only on the graph and
// the writer configuration.
func (e *Emitter) EmitAssembly(asm *metadata.Assembly) Summary {
	w := e.writer
	summary := Summary{Assembly: asm.Name}

	w.out.WriteLiteral("// <auto-generated>")
	w.out.WriteLine()
	header := "//     API surface of " + asm.Name
	if asm.Version != "" {
		header += ", Version=" + asm.Version
	}
	w.out.WriteLiteral(header)
	w.out.WriteLine()
	w.out.WriteLiteral("// </auto-generated>")
	w.out.WriteLine()
	w.out.WriteLine()

	w.WriteDeclaration(asm)
	w.out.WriteLine()

	namespaces := make([]*metadata.Namespace, len(asm.Namespaces))
	copy(namespaces, asm.Namespaces)
	sort.SliceStable(namespaces, func(i, j int) bool {
		return namespaces[i].Name < namespaces[j].Name
	})

	for _, ns := range namespaces {
		if !w.filter.IncludeNamespace(ns) || len(w.includedTypes(ns)) == 0 {
			w.logger.Debug("skipping namespace", zap.String("namespace", ns.DisplayName()))
			continue
		}
		w.logger.Debug("emitting namespace", zap.String("namespace", ns.DisplayName()))
		w.WriteDeclaration(ns)
		w.out.WriteLine()
		summary.Namespaces++
		for _, t := range ns.Types {
			e.count(t, &summary)
		}
	}

	w.logger.Info("emitted assembly surface",
		zap.String("assembly", summary.Assembly),
		zap.Int("namespaces", summary.Namespaces),
		zap.Int("types", summary.Types),
		zap.Int("members", summary.Members),
	)
	return summary
}

// EmitType writes a single type declaration without header or namespace
func (e *Emitter) EmitType(t *metadata.TypeDefinition) Summary {
	summary := Summary{Assembly: t.AssemblyName()}
	e.writer.WriteDeclaration(t)
	e.count(t, &summary)
	e.writer.logger.Info("emitted type", zap.String("type", t.FullName()), zap.Int("members", summary.Members))
	return summary
}

// FindType looks up a type, nested types included, by its display name
func FindType(asm *metadata.Assembly, fullName string) *metadata.TypeDefinition {
	var found *metadata.TypeDefinition
	walkTypes(asm, func(t *metadata.TypeDefinition) bool {
		if t.FullName() == fullName {
			found = t
			return false
		}
		return true
	})
	return found
}

// TypeNames lists the display names of every type in asm
func TypeNames(asm *metadata.Assembly) []string {
	var names []string
	walkTypes(asm, func(t *metadata.TypeDefinition) bool {
		names = append(names, t.FullName())
		return true
	})
	return names
}

func walkTypes(asm *metadata.Assembly, visit func(*metadata.TypeDefinition) bool) {
	var walk func(types []*metadata.TypeDefinition) bool
	walk = func(types []*metadata.TypeDefinition) bool {
		for _, t := range types {
			if !visit(t) || !walk(t.NestedTypes) {
				return false
			}
		}
		return true
	}
	for _, ns := range asm.Namespaces {
		if !walk(ns.Types) {
			return
		}
	}
}

func (e *Emitter) count(t *metadata.TypeDefinition, summary *Summary) {
	f := e.writer.filter
	if !f.IncludeType(t) {
		return
	}
	summary.Types++
	for _, m := range t.Members() {
		if f.IncludeMember(m) {
			summary.Members++
		}
	}
	for _, nested := range t.NestedTypes {
		e.count(nested, summary)
	}
}
