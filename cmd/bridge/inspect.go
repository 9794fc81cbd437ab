package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/export"
	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/resolve"
	"github.com/technologiescollege/SweetEnergy3d-sub000/scene"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

var (
	inspectInteractive bool
	inspectWIT         bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [TYPE...]",
	Short: "Resolve foreign types and list their members",
	Long: `inspect resolves foreign types through the outer tier and lists their
fields, constructors, methods and entry points. Without arguments it lists
the types an export needs.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectInteractive, "interactive", "i", false, "browse types and call entry points in a TUI")
	inspectCmd.Flags().BoolVar(&inspectWIT, "wit", false, "print callable members as a WIT interface")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e := newExporter()
	defer e.Close(ctx)

	reg, err := e.Registry(ctx)
	if err != nil {
		return err
	}
	f := foreign.NewFactory(reg, log.Named("foreign"))

	names := args
	if len(names) == 0 {
		names = defaultInspectTypes()
	}
	if inspectInteractive {
		return runInteractive(ctx, f, names)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(out)
		}
		info, err := describe(ctx, f, name)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", render(errorStyle, "unresolved"), name, err)
			continue
		}
		if inspectWIT {
			iface, skipped := witInterface(info)
			fmt.Fprintln(out, iface)
			if skipped > 0 {
				fmt.Fprintf(out, "// %d members with object types omitted\n", skipped)
			}
			continue
		}
		printType(out, info)
	}
	if failed > 0 {
		return failf(4, "%d of %d types unresolved", failed, len(names))
	}
	return nil
}

func defaultInspectTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range append(append([]string{}, export.RequiredTypes...), scene.DefaultPrecache...) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

type typeInfo struct {
	name       string
	tier       string
	archive    string
	patched    bool
	chain      []string
	interfaces []string
	members    []memberInfo
}

type memberInfo struct {
	kind      string
	name      string
	sig       string
	binding   string
	params    []paramInfo
	result    string
	resultWit wit.Type
	// method is set for entry points callable without a receiver.
	method *foreign.Method
}

type paramInfo struct {
	name    string
	code    byte
	witType wit.Type
	typeStr string
}

const (
	kindField       = "field"
	kindStatic      = "static"
	kindConstant    = "constant"
	kindConstructor = "constructor"
	kindMethod      = "method"
	kindEntry       = "entry point"
)

func describe(ctx context.Context, f *foreign.Factory, name string) (*typeInfo, error) {
	c, err := f.Class(ctx, name)
	if err != nil {
		return nil, err
	}
	t := c.Type()
	info := &typeInfo{
		name:    t.Name,
		tier:    t.Tier.String(),
		archive: t.Archive,
		patched: t.Patched,
	}
	for _, a := range t.Chain()[1:] {
		info.chain = append(info.chain, a.Name)
	}
	for _, i := range t.Interfaces {
		info.interfaces = append(info.interfaces, i.Name)
	}

	for _, fld := range c.Fields() {
		d := fld.Decl()
		kind := kindField
		if d.Transient {
			kind = "transient field"
		}
		info.members = append(info.members, memberInfo{
			kind:   kind,
			name:   fld.Name(),
			result: descName(fieldDesc(d)),
		})
	}
	for _, s := range t.Desc.Statics {
		info.members = append(info.members, memberInfo{kind: kindStatic, name: s.Name, result: descName(fieldDesc(s))})
	}
	for _, k := range t.Desc.Constants {
		info.members = append(info.members, memberInfo{kind: kindConstant, name: k})
	}
	for _, ctor := range t.Desc.Constructors {
		m := memberInfo{kind: kindConstructor, name: typename.Simple(t.Name), sig: ctor.Sig}
		if s, err := artifact.ParseSig(ctor.Sig); err == nil {
			m.params = params(s.Params)
		}
		info.members = append(info.members, m)
	}

	for _, decl := range c.Methods() {
		m := memberInfo{kind: kindMethod, name: decl.Name, sig: decl.Sig, binding: decl.Binding.String()}
		if decl.Target != "" && decl.Binding != artifact.BindExport {
			m.binding += " " + decl.Target
		}
		if m.sig == "" {
			m.kind = kindEntry
			m.sig = entrySig(t.Chain(), decl.Name)
		}
		s, err := artifact.ParseSig(m.sig)
		if err == nil {
			m.params = params(s.Params)
			if s.Return != "V" {
				m.result = descName(s.Return)
				m.resultWit = witOf(s.Return[0])
			}
		}
		if decl.Binding == artifact.BindExport && err == nil && primitiveOnly(s) {
			m.method, _ = c.Method(decl.Name, m.sig)
		}
		info.members = append(info.members, m)
	}
	return info, nil
}

func fieldDesc(f artifact.Field) string {
	if f.Code == 'L' || f.Code == '[' {
		return f.Class
	}
	return string(f.Code)
}

// entrySig derives a method signature from the core signature of an
// undeclared entry point.
func entrySig(chain []*resolve.Type, name string) string {
	for _, t := range chain {
		ep, ok := t.EntryPoint(name)
		if !ok {
			continue
		}
		var b strings.Builder
		b.WriteByte('(')
		for _, p := range ep.Type.Params {
			b.WriteByte(valueCode(p))
		}
		b.WriteByte(')')
		if len(ep.Type.Results) == 0 {
			b.WriteByte('V')
		} else {
			b.WriteByte(valueCode(ep.Type.Results[0]))
		}
		return b.String()
	}
	return "()V"
}

func valueCode(v api.ValueType) byte {
	switch v {
	case api.ValueTypeI64:
		return 'J'
	case api.ValueTypeF32:
		return 'F'
	case api.ValueTypeF64:
		return 'D'
	}
	return 'I'
}

func primitiveOnly(s artifact.Sig) bool {
	for _, p := range s.Params {
		if p[0] == 'L' || p[0] == '[' {
			return false
		}
	}
	return true
}

func params(descs []string) []paramInfo {
	out := make([]paramInfo, len(descs))
	for i, d := range descs {
		p := paramInfo{name: fmt.Sprintf("arg%d", i), code: d[0], typeStr: descName(d)}
		if wt := witOf(d[0]); wt != nil {
			p.witType = wt
			p.typeStr = witTypeStr(wt)
		}
		out[i] = p
	}
	return out
}

// witOf maps a primitive type code to its WIT type.
func witOf(code byte) wit.Type {
	switch code {
	case 'Z':
		return wit.Bool{}
	case 'B':
		return wit.S8{}
	case 'C':
		return wit.U16{}
	case 'S':
		return wit.S16{}
	case 'I':
		return wit.S32{}
	case 'J':
		return wit.S64{}
	case 'F':
		return wit.F32{}
	case 'D':
		return wit.F64{}
	}
	return nil
}

// descName renders a field type descriptor.
func descName(d string) string {
	if d == "" {
		return ""
	}
	switch d[0] {
	case '[':
		return descName(d[1:]) + "[]"
	case 'L':
		return typename.Simple(artifact.Field{Code: 'L', Class: d}.ClassName())
	}
	if wt := witOf(d[0]); wt != nil {
		return witTypeStr(wt)
	}
	return d
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func formatMember(m memberInfo, styled bool) string {
	style := func(s lipgloss.Style, v string) string {
		if !styled {
			return v
		}
		return s.Render(v)
	}
	switch m.kind {
	case kindField, "transient field", kindStatic:
		return style(funcStyle, m.name) + " " + style(typeStyle, m.result)
	case kindConstant:
		return style(funcStyle, m.name)
	}
	ps := make([]string, len(m.params))
	for i, p := range m.params {
		ps[i] = p.name + ": " + style(typeStyle, p.typeStr)
	}
	s := style(funcStyle, m.name) + "(" + strings.Join(ps, ", ") + ")"
	if m.result != "" {
		s += " -> " + style(typeStyle, m.result)
	}
	if m.binding != "" && m.binding != artifact.BindExport.String() {
		s += "  " + style(helpStyle, "["+m.binding+"]")
	}
	return s
}

func printType(w io.Writer, info *typeInfo) {
	tty := stdoutTTY()
	header := info.name
	if tty {
		header = titleStyle.Render(typename.Simple(info.name)) + " " + info.name
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "  tier: %s", info.tier)
	if info.archive != "" {
		fmt.Fprintf(w, "  archive: %s", info.archive)
	}
	if info.patched {
		fmt.Fprint(w, "  patched")
	}
	fmt.Fprintln(w)
	if len(info.chain) > 0 {
		fmt.Fprintf(w, "  extends %s\n", strings.Join(info.chain, " <- "))
	}
	if len(info.interfaces) > 0 {
		fmt.Fprintf(w, "  implements %s\n", strings.Join(info.interfaces, ", "))
	}
	last := ""
	for _, m := range info.members {
		if m.kind != last {
			fmt.Fprintf(w, "  %ss:\n", m.kind)
			last = m.kind
		}
		fmt.Fprintf(w, "    %s\n", formatMember(m, tty))
	}
}
