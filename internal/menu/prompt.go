package menu

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Password asks for a secret with masked echo. The second return value is
// false when the user dismissed the prompt.
func Password(title string) (string, bool) {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Placeholder = "password"
	ti.Focus()
	return runInput(title, ti)
}

// Input asks for a single line of plain text.
func Input(title, placeholder string) (string, bool) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	return runInput(title, ti)
}

func runInput(title string, ti textinput.Model) (string, bool) {
	m := inputModel{title: title, input: ti}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", false
	}
	fm := final.(inputModel)
	if fm.cancelled {
		return "", false
	}
	return fm.input.Value(), true
}

type inputModel struct {
	title     string
	input     textinput.Model
	cancelled bool
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return TitleStyle.Render(m.title) + "\n\n" + m.input.View() + "\n\n" +
		HelpStyle.Render("enter confirm · esc cancel")
}

// Confirm asks a yes/no question. Defaults to no.
func Confirm(question string) bool {
	m := confirmModel{question: question}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false
	}
	return final.(confirmModel).yes
}

type confirmModel struct {
	question string
	yes      bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			m.yes = true
			return m, tea.Quit
		case "n", "N", "esc", "enter", "ctrl+c", "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	return WarningStyle.Render(m.question) + "\n\n" +
		HelpStyle.Render("y confirm · n cancel")
}

// Select offers a list of choices and returns the picked index. The second
// return value is false when the user dismissed the prompt.
func Select(title string, choices []string) (int, bool) {
	if len(choices) == 0 {
		return 0, false
	}
	m := selectModel{title: title, choices: choices}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return 0, false
	}
	fm := final.(selectModel)
	if fm.cancelled {
		return 0, false
	}
	return fm.cursor, true
}

type selectModel struct {
	title     string
	choices   []string
	cursor    int
	cancelled bool
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			return m, tea.Quit
		case "esc", "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	s := TitleStyle.Render(m.title) + "\n\n"
	for i, c := range m.choices {
		cursor := "  "
		style := RowStyle
		if i == m.cursor {
			cursor = CursorStyle.Render("> ")
		}
		s += cursor + style.Render(c) + "\n"
	}
	s += "\n" + HelpStyle.Render("↑/↓ move · enter select · esc cancel")
	return s
}

// ShowText displays a block of text until any key is pressed.
func ShowText(title, body string) {
	m := textModel{title: title, body: body}
	_, _ = tea.NewProgram(m).Run()
}

type textModel struct {
	title string
	body  string
}

func (m textModel) Init() tea.Cmd { return nil }

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m textModel) View() string {
	return TitleStyle.Render(m.title) + "\n\n" + m.body + "\n\n" +
		HelpStyle.Render("any key to close")
}
