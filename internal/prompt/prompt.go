// Package prompt collects token parameters interactively in the terminal.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("prompt cancelled")

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Field is one question.
type Field struct {
	Key      string
	Prompt   string
	Default  string
	Validate func(string) error // nil = accept anything.
}

// Field keys used by TokenFields and Apply.
const (
	KeyName        = "name"
	KeySymbol      = "symbol"
	KeyDecimals    = "decimals"
	KeyDescription = "description"
	KeyFrozen      = "frozen"
	KeyEnvironment = "environment"
)

// TokenFields returns the questions for a coin, pre-filled from p.
func TokenFields(p token.Params) []Field {
	decimals := ""
	if p.Decimals != 0 {
		decimals = strconv.Itoa(int(p.Decimals))
	}
	frozen := "n"
	if p.IsFrozen {
		frozen = "y"
	}
	env := string(p.Environment)
	if env == "" {
		env = string(token.Devnet)
	}
	return []Field{
		{Key: KeyName, Prompt: "Token name", Default: p.Name, Validate: checkField("name", func(v string) token.Params {
			return token.Params{Decimals: 9, Symbol: "X", Name: v}
		})},
		{Key: KeySymbol, Prompt: "Symbol", Default: p.Symbol, Validate: checkField("symbol", func(v string) token.Params {
			return token.Params{Decimals: 9, Symbol: v, Name: "X"}
		})},
		{Key: KeyDecimals, Prompt: fmt.Sprintf("Decimals (%d-%d)", token.MinDecimals, token.MaxDecimals), Default: decimals, Validate: validateDecimals},
		{Key: KeyDescription, Prompt: "Description", Default: p.Description, Validate: checkField("description", func(v string) token.Params {
			return token.Params{Decimals: 9, Symbol: "X", Name: "X", Description: v}
		})},
		{Key: KeyFrozen, Prompt: "Freeze metadata (y/n)", Default: frozen, Validate: validateYesNo},
		{Key: KeyEnvironment, Prompt: "Environment (mainnet/testnet/devnet)", Default: env},
	}
}

// checkField runs token.Validate on a stub built around v and reports only
// errors about field.
func checkField(field string, build func(v string) token.Params) func(string) error {
	return func(v string) error {
		err := token.Validate(build(v).Canonicalize())
		var verr *token.ValidationError
		if errors.As(err, &verr) && verr.Field == field {
			return errors.New(verr.Reason)
		}
		return nil
	}
}

func validateDecimals(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.New("must be a number")
	}
	if n < token.MinDecimals || n > token.MaxDecimals {
		return fmt.Errorf("must be between %d and %d", token.MinDecimals, token.MaxDecimals)
	}
	return nil
}

func validateYesNo(v string) error {
	if _, ok := parseYesNo(v); !ok {
		return errors.New("answer y or n")
	}
	return nil
}

func parseYesNo(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true":
		return true, true
	case "n", "no", "false", "":
		return false, true
	}
	return false, false
}

// Apply builds token parameters from prompt answers.
func Apply(answers map[string]string) (token.Params, error) {
	decimals, err := strconv.Atoi(strings.TrimSpace(answers[KeyDecimals]))
	if err != nil || decimals < 0 || decimals > 255 {
		return token.Params{}, &token.ValidationError{Field: "decimals", Reason: "must be a number"}
	}
	frozen, _ := parseYesNo(answers[KeyFrozen])
	p := token.Params{
		Decimals:    uint8(decimals),
		Symbol:      answers[KeySymbol],
		Name:        answers[KeyName],
		Description: answers[KeyDescription],
		IsFrozen:    frozen,
		Environment: token.Environment(answers[KeyEnvironment]),
	}
	return p.Canonicalize(), nil
}

// model is a bubbletea model that asks one question at a time.
type model struct {
	fields    []Field
	idx       int
	inputs    []textinput.Model
	err       error
	done      bool
	cancelled bool
}

func newModel(fields []Field) model {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Prompt
		ti.CharLimit = 256
		ti.SetValue(f.Default)
		inputs[i] = ti
	}
	m := model{
		fields: fields,
		inputs: inputs,
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done || m.cancelled {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if v := m.fields[m.idx].Validate; v != nil {
				if err := v(m.inputs[m.idx].Value()); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.err = nil
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.done || m.cancelled || len(m.fields) == 0 {
		return ""
	}
	var b strings.Builder
	f := m.fields[m.idx]
	fmt.Fprintf(&b, "%s: %s\n", labelStyle.Render(f.Prompt), m.inputs[m.idx].View())
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("(%d/%d) enter to confirm, esc to cancel", m.idx+1, len(m.fields))) + "\n")
	return b.String()
}

func (m model) answers() map[string]string {
	out := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		out[f.Key] = m.inputs[i].Value()
	}
	return out
}

// Run asks every field and returns the answers keyed by Field.Key.
func Run(fields []Field, opts ...tea.ProgramOption) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newModel(fields), opts...)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(model)
	if !ok || !final.done {
		return nil, ErrCancelled
	}
	return final.answers(), nil
}

// Params prompts for every coin parameter, using p for the defaults.
func Params(p token.Params, opts ...tea.ProgramOption) (token.Params, error) {
	answers, err := Run(TokenFields(p), opts...)
	if err != nil {
		return token.Params{}, err
	}
	return Apply(answers)
}
