package main

import (
	"strconv"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

// witFunction describes a method or entry point as a WIT function. It
// returns nil when a parameter or the result has no primitive WIT type.
func witFunction(m memberInfo) *wit.Function {
	if m.kind != kindMethod && m.kind != kindEntry {
		return nil
	}
	f := &wit.Function{Name: kebab(m.name)}
	for _, p := range m.params {
		if p.witType == nil {
			return nil
		}
		f.Params = append(f.Params, wit.Param{Name: kebab(p.name), Type: p.witType})
	}
	if m.result != "" {
		if m.resultWit == nil {
			return nil
		}
		f.Results = []wit.Param{{Type: m.resultWit}}
	}
	return f
}

// witInterface renders the callable members of a type as a WIT interface.
// Overloads get a numeric suffix since WIT names are unique per interface.
func witInterface(info *typeInfo) (string, int) {
	var b strings.Builder
	b.WriteString("interface ")
	b.WriteString(kebab(typename.Simple(info.name)))
	b.WriteString(" {\n")
	seen := make(map[string]int)
	skipped := 0
	for _, m := range info.members {
		if m.kind != kindMethod && m.kind != kindEntry {
			continue
		}
		f := witFunction(m)
		if f == nil {
			skipped++
			continue
		}
		if n := seen[f.Name]; n > 0 {
			seen[f.Name]++
			f.Name += "-" + strconv.Itoa(n+1)
		} else {
			seen[f.Name] = 1
		}
		b.WriteString("  ")
		b.WriteString(witSignature(f))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String(), skipped
}

func witSignature(f *wit.Function) string {
	ps := make([]string, len(f.Params))
	for i, p := range f.Params {
		ps[i] = p.Name + ": " + witTypeStr(p.Type)
	}
	s := f.Name + ": func(" + strings.Join(ps, ", ") + ")"
	if len(f.Results) == 1 && f.Results[0].Name == "" {
		s += " -> " + witTypeStr(f.Results[0].Type)
	}
	return s + ";"
}

// kebab converts a camel case identifier to a WIT name.
func kebab(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			if b.Len() > 0 && prevLower {
				b.WriteByte('-')
			}
			prevLower = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
