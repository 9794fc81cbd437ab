package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the export pipeline the error occurred
type Phase string

const (
	PhaseDiscovery Phase = "discovery" // module set location
	PhaseResolve   Phase = "resolve"   // type resolution and installation
	PhasePatch     Phase = "patch"     // artifact rewriting
	PhaseBuild     Phase = "build"     // object graph construction
	PhaseSerialize Phase = "serialize" // object stream output
	PhaseDecode    Phase = "decode"    // object stream input
	PhaseExport    Phase = "export"    // orchestration
	PhaseParse     Phase = "parse"     // plan and artifact parsing
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindInvalidData    Kind = "invalid_data"
	KindTypeMismatch   Kind = "type_mismatch"
	KindUnsupported    Kind = "unsupported"
	KindFieldMissing   Kind = "field_missing"
	KindMethodMissing  Kind = "method_missing"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidInput   Kind = "invalid_input"
	KindInstantiation  Kind = "instantiation"
	KindInvocation     Kind = "invocation"
	KindVerification   Kind = "verification"
	KindIO             Kind = "io"
	KindInvariant      Kind = "invariant"
	KindNotInitialized Kind = "not_initialized"
)

// Failure taxonomy of an export. Each matches any *Error of the same phase.
var (
	DiscoveryFailure  = &Error{Phase: PhaseDiscovery}
	ResolutionFailure = &Error{Phase: PhaseResolve}
	PatchFailure      = &Error{Phase: PhasePatch}
	BuildError        = &Error{Phase: PhaseBuild}
	SerializeError    = &Error{Phase: PhaseSerialize}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Type    string
	Archive string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" || e.Archive != "" {
		b.WriteString(": ")
		if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
		if e.Archive != "" {
			if e.Type != "" {
				b.WriteString(" in ")
			}
			b.WriteString("archive ")
			b.WriteString(e.Archive)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Archive != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Kind matches every error of its phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return e.Phase == t.Phase
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the foreign type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Archive sets the archive the error relates to
func (b *Builder) Archive(path string) *Builder {
	b.err.Archive = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// TypeNotFound creates a not-found error for a foreign type
func TypeNotFound(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Type:   name,
		Detail: "no definition in any tier",
		Cause:  cause,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, typeName, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Type:   typeName,
		Detail: fmt.Sprintf("field %q not declared", fieldName),
	}
}

// MethodMissing creates a missing method error
func MethodMissing(phase Phase, typeName, method, sig string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMethodMissing,
		Type:   typeName,
		Detail: fmt.Sprintf("method %s%s not declared", method, sig),
	}
}

// TypeMismatch creates a type mismatch error for a value assigned to a field or argument
func TypeMismatch(phase Phase, path []string, typeName string, value any, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   typeName,
		Value:  value,
		Detail: fmt.Sprintf("value of Go type %T is not assignable to %s", value, want),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Invariant creates an error for a graph that violates a structural rule
func Invariant(phase Phase, typeName, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvariant,
		Type:   typeName,
		Detail: detail,
	}
}

// IO wraps a filesystem failure
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Path:   []string{path},
		Cause:  cause,
		Detail: "file operation failed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Instantiation creates an instantiation error for a foreign type
func Instantiation(typeName string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInstantiation,
		Type:   typeName,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// MissingType represents a single unresolved type reference
type MissingType struct {
	Referrer string // type whose installation needed the reference
	Name     string
}

// MissingTypesError is returned when a type cannot be installed because
// types it links against are missing from every tier
type MissingTypesError struct {
	Types []MissingType
}

// NewMissingTypesError creates an error from a list of "referrer#name" strings
func NewMissingTypesError(refs []string) *MissingTypesError {
	result := &MissingTypesError{
		Types: make([]MissingType, 0, len(refs)),
	}
	for _, ref := range refs {
		referrer, name, found := strings.Cut(ref, "#")
		if !found {
			name, referrer = referrer, ""
		}
		result.Types = append(result.Types, MissingType{Referrer: referrer, Name: name})
	}
	return result
}

func (e *MissingTypesError) Error() string {
	if len(e.Types) == 0 {
		return "[resolve] not_found: no types specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing %d linked type(s):\n", len(e.Types))

	byReferrer := make(map[string][]string)
	var order []string
	for _, mt := range e.Types {
		if _, exists := byReferrer[mt.Referrer]; !exists {
			order = append(order, mt.Referrer)
		}
		byReferrer[mt.Referrer] = append(byReferrer[mt.Referrer], mt.Name)
	}

	for _, referrer := range order {
		b.WriteString("\n  ")
		if referrer == "" {
			b.WriteString("(root)")
		} else {
			b.WriteString(referrer)
		}
		b.WriteString(":\n")
		for _, name := range byReferrer[referrer] {
			b.WriteString("    - ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingTypesError) Is(target error) bool {
	if _, ok := target.(*MissingTypesError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseResolve && (t.Kind == "" || t.Kind == KindNotFound)
	}
	return false
}

// Chain renders the causal chain of err one cause per line, outermost first.
func Chain(err error) []string {
	var out []string
	for err != nil {
		if e, ok := err.(*Error); ok {
			shallow := *e
			shallow.Cause = nil
			out = append(out, shallow.Error())
			err = e.Cause
			continue
		}
		out = append(out, err.Error())
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return out
}
