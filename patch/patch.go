package patch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/technologiescollege/SweetEnergy3d-sub000/artifact"
	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// Kind selects the rewrite a Rule performs.
type Kind int

const (
	// RelinkAncestor replaces a universal-base ancestor with Rule.Ancestor.
	RelinkAncestor Kind = iota
	// InjectMethod adds a no-op entry point Rule.Method of type Rule.Type.
	InjectMethod
	// InjectMethodWithBody adds entry point Rule.Method with body Rule.Body.
	InjectMethodWithBody
)

func (k Kind) String() string {
	switch k {
	case RelinkAncestor:
		return "relink-ancestor"
	case InjectMethod:
		return "inject-method"
	case InjectMethodWithBody:
		return "inject-method-with-body"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// BodyFunc produces the body of an injected entry point from its signature.
type BodyFunc func(ft artifact.FuncType) ([]byte, error)

// Rule is one allow-listed rewrite of one named artifact.
type Rule struct {
	Body     BodyFunc
	Target   string
	Ancestor string
	Method   string
	Type     artifact.FuncType
	Kind     Kind
}

func (r Rule) String() string {
	switch r.Kind {
	case RelinkAncestor:
		return fmt.Sprintf("%s %s -> %s", r.Kind, r.Target, r.Ancestor)
	default:
		return fmt.Sprintf("%s %s.%s %s", r.Kind, r.Target, r.Method, r.Type)
	}
}

// Patcher applies rules from a fixed allow-list.
type Patcher struct {
	rules map[string][]Rule
	log   *zap.Logger
}

// New creates a patcher for the given rules. Rules for the same target are
// applied in the order given.
func New(rules []Rule, log *zap.Logger) *Patcher {
	if log == nil {
		log = Logger()
	}
	p := &Patcher{rules: make(map[string][]Rule), log: log}
	for _, r := range rules {
		p.rules[r.Target] = append(p.rules[r.Target], r)
	}
	return p
}

// Targets reports whether any rule names typeName.
func (p *Patcher) Targets(typeName string) bool {
	return len(p.rules[typeName]) > 0
}

// Rules returns the rules registered for typeName.
func (p *Patcher) Rules(typeName string) []Rule {
	return p.rules[typeName]
}

// Patch applies every rule targeting typeName. Any failure is logged and the
// original bytes are returned unchanged. Types outside the allow-list and
// rules whose condition already holds leave raw byte-identical.
func (p *Patcher) Patch(typeName string, raw []byte) []byte {
	out, err := p.Apply(typeName, raw)
	if err != nil {
		p.log.Warn("patch failed, using unpatched artifact",
			zap.String("type", typeName),
			zap.Error(err))
		return raw
	}
	return out
}

// Apply is Patch without the fallback: it returns the first rule failure.
func (p *Patcher) Apply(typeName string, raw []byte) ([]byte, error) {
	rules := p.rules[typeName]
	if len(rules) == 0 {
		return raw, nil
	}

	m, err := artifact.Parse(raw)
	if err != nil {
		return nil, patchError(typeName, "parse artifact", err)
	}

	changed := false
	for _, r := range rules {
		applied, err := apply(m, r)
		if err != nil {
			return nil, patchError(typeName, r.String(), err)
		}
		if applied {
			p.log.Debug("patch applied", zap.String("rule", r.String()))
		}
		changed = changed || applied
	}
	if !changed {
		return raw, nil
	}

	out := m.Encode()
	if _, err := artifact.Parse(out); err != nil {
		return nil, patchError(typeName, "re-parse patched artifact", err)
	}
	return out, nil
}

func apply(m *artifact.Module, r Rule) (bool, error) {
	switch r.Kind {
	case RelinkAncestor:
		return relink(m, r)
	case InjectMethod:
		return inject(m, r, func(ft artifact.FuncType) ([]byte, error) {
			return artifact.NopBody(ft), nil
		})
	case InjectMethodWithBody:
		if r.Body == nil {
			return false, errors.InvalidInput(errors.PhasePatch, "rule has no body")
		}
		return inject(m, r, r.Body)
	default:
		return false, errors.Unsupported(errors.PhasePatch, r.Kind.String())
	}
}

func relink(m *artifact.Module, r Rule) (bool, error) {
	d, err := m.Descriptor()
	if err != nil {
		return false, err
	}
	if d.Ancestor != artifact.RootType {
		return false, nil
	}
	if r.Ancestor == "" || r.Ancestor == artifact.RootType {
		return false, nil
	}
	return true, m.SetAncestor(r.Ancestor)
}

func inject(m *artifact.Module, r Rule, body BodyFunc) (bool, error) {
	present, err := m.HasEntryPoint(r.Method, r.Type)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	code, err := body(r.Type)
	if err != nil {
		return false, err
	}
	if _, err := m.AddFunction(r.Method, r.Type, code); err != nil {
		return false, err
	}
	return true, nil
}

func patchError(typeName, step string, cause error) error {
	return errors.New(errors.PhasePatch, errors.KindInvalidData).
		Type(typeName).
		Detail("%s", step).
		Cause(cause).
		Build()
}
