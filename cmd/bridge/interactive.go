package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.bytecodealliance.org/wit"

	"github.com/technologiescollege/SweetEnergy3d-sub000/foreign"
	"github.com/technologiescollege/SweetEnergy3d-sub000/typename"
)

type modelState int

const (
	stateSelectType modelState = iota
	stateSelectMember
	stateInputArgs
	stateShowResult
)

// typeItem is a list entry for one resolved or unresolved type.
type typeItem struct {
	info *typeInfo
	name string
	err  error
}

func (i typeItem) Title() string { return typename.Simple(i.name) }

func (i typeItem) Description() string {
	if i.err != nil {
		return "unresolved: " + i.err.Error()
	}
	d := fmt.Sprintf("%s  %s  %d members", i.name, i.info.tier, len(i.info.members))
	if i.info.patched {
		d += "  patched"
	}
	return d
}

func (i typeItem) FilterValue() string { return i.name }

type interactiveModel struct {
	ctx      context.Context
	factory  *foreign.Factory
	names    []string
	err      error
	types    list.Model
	current  *typeInfo
	result   string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	items []list.Item
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, f *foreign.Factory, names []string) *interactiveModel {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Foreign types"
	l.Styles.Title = titleStyle
	return &interactiveModel{
		ctx:     ctx,
		factory: f,
		names:   names,
		types:   l,
		state:   stateSelectType,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadTypes
}

func (m *interactiveModel) loadTypes() tea.Msg {
	items := make([]list.Item, 0, len(m.names))
	for _, name := range m.names {
		info, err := describe(m.ctx, m.factory, name)
		items = append(items, typeItem{info: info, name: name, err: err})
	}
	return loadedMsg{items: items}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.types.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case loadedMsg:
		m.loaded = true
		return m, m.types.SetItems(msg.items)

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil

	case tea.KeyMsg:
		if m.state == stateSelectType && m.types.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}
		}

		switch m.state {
		case stateSelectType:
			if msg.String() == "enter" {
				item, ok := m.types.SelectedItem().(typeItem)
				if ok && item.err == nil {
					m.current = item.info
					m.selected = 0
					m.state = stateSelectMember
				}
				return m, nil
			}

		case stateSelectMember:
			switch msg.String() {
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.current.members)-1 {
					m.selected++
				}
			case "enter":
				if len(m.current.members) == 0 || m.current.members[m.selected].method == nil {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callMethod
				}
				m.state = stateInputArgs
			case "esc":
				m.state = stateSelectType
			}
			return m, nil

		case stateInputArgs:
			switch msg.String() {
			case "enter":
				return m, m.callMethod
			case "tab":
				if len(m.inputs) > 1 {
					m.inputs[m.focusIdx].Blur()
					m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
					m.inputs[m.focusIdx].Focus()
				}
				return m, nil
			case "esc":
				m.state = stateSelectMember
				m.inputs = nil
				return m, nil
			}
			var cmds []tea.Cmd
			for i := range m.inputs {
				var cmd tea.Cmd
				m.inputs[i], cmd = m.inputs[i].Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)

		case stateShowResult:
			switch msg.String() {
			case "enter", "esc":
				m.state = stateSelectMember
				m.result = ""
				m.err = nil
			}
			return m, nil
		}
	}

	if m.state == stateSelectType {
		var cmd tea.Cmd
		m.types, cmd = m.types.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	mem := m.current.members[m.selected]
	m.inputs = make([]textinput.Model, len(mem.params))
	for i, p := range mem.params {
		ti := textinput.New()
		ti.Placeholder = p.typeStr
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callMethod() tea.Msg {
	mem := m.current.members[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := convertArg(input.Value(), mem.params[i].witType)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", mem.params[i].name, err)}
		}
		args[i] = v
	}

	result, err := mem.method.Invoke(m.ctx, nil, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	if mem.result == "" {
		return callResultMsg{result: "(void)"}
	}
	return callResultMsg{result: fmt.Sprintf("%v", result)}
}

func convertArg(value string, t wit.Type) (any, error) {
	value = strings.TrimSpace(value)
	switch t.(type) {
	case wit.U16:
		v, err := strconv.ParseUint(value, 10, 16)
		return uint16(v), err
	case wit.S8:
		v, err := strconv.ParseInt(value, 10, 8)
		return int8(v), err
	case wit.S16:
		v, err := strconv.ParseInt(value, 10, 16)
		return int16(v), err
	case wit.S32:
		v, err := strconv.ParseInt(value, 10, 32)
		return int32(v), err
	case wit.S64:
		return strconv.ParseInt(value, 10, 64)
	case wit.F32:
		v, err := strconv.ParseFloat(value, 32)
		return float32(v), err
	case wit.F64:
		return strconv.ParseFloat(value, 64)
	case wit.Bool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", witTypeStr(t))
	}
}

func (m *interactiveModel) View() string {
	if !m.loaded {
		return "Resolving types..."
	}

	var b strings.Builder
	switch m.state {
	case stateSelectType:
		b.WriteString(m.types.View())

	case stateSelectMember:
		b.WriteString(titleStyle.Render(typename.Simple(m.current.name)))
		b.WriteString(" ")
		b.WriteString(m.current.name)
		b.WriteString("\n\n")
		for i, mem := range m.current.members {
			line := fmt.Sprintf("%-16s %s", mem.kind, formatMember(mem, i != m.selected))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call entry point • esc types • q quit"))

	case stateInputArgs:
		mem := m.current.members[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(mem.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(mem.params[i].typeStr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		mem := m.current.members[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(mem.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}
	return b.String()
}

func runInteractive(ctx context.Context, f *foreign.Factory, names []string) error {
	p := tea.NewProgram(newInteractiveModel(ctx, f, names), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
