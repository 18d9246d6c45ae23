package render

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// StageMsg reports the pipeline entering a stage, sent from the engine's
// progress callback.
type StageMsg struct {
	Stage  string
	Detail string
}

// DoneMsg ends the progress view.
type DoneMsg struct{}

var stageLabels = map[string]string{
	"scan":     "Scanning",
	"classify": "Classifying",
	"inject":   "Injecting helper",
	"rewrite":  "Rewriting",
	"done":     "Done",
}

// progressModel is a minimal live view of the pipeline stages.
type progressModel struct {
	current string
	detail  string
	history []string
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StageMsg:
		if m.current != "" {
			m.history = append(m.history, m.current)
		}
		label := stageLabels[msg.Stage]
		if label == "" {
			label = msg.Stage
		}
		m.current = label
		m.detail = msg.Detail
		return m, nil
	case DoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	view := ""
	for _, stage := range m.history {
		view += fmt.Sprintf("  %s✓%s %s\n", Green, Reset, stage)
	}
	if m.current != "" {
		line := m.current
		if m.detail != "" {
			line += " " + Dim + m.detail + Reset
		}
		view += fmt.Sprintf("  %s▸%s %s\n", Cyan, Reset, line)
	}
	return view
}

// Progress runs the pipeline (via run) under a live stage display. The
// returned send function is the engine's progress callback.
func Progress(run func(send func(stage, detail string))) error {
	program := tea.NewProgram(progressModel{})

	go func() {
		run(func(stage, detail string) {
			program.Send(StageMsg{Stage: stage, Detail: detail})
		})
		program.Send(DoneMsg{})
	}()

	_, err := program.Run()
	return err
}
