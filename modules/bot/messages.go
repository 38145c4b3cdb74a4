package bot

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Text is a catalog entry.
type Text struct {
	Text     string `yaml:"text"`
	Markdown bool   `yaml:"markdown"`
}

// Reply turns the entry into an outgoing message.
func (t Text) Reply() Reply {
	return Reply{Text: t.Text, Markdown: t.Markdown}
}

// ButtonLabels holds keyboard labels.
type ButtonLabels struct {
	ListTasks  string `yaml:"list_tasks"`
	CreateTask string `yaml:"create_task"`
	Complete   string `yaml:"complete"`
	Delete     string `yaml:"delete"`
	Back       string `yaml:"back"`
}

// Messages is the catalog of user-facing texts.
type Messages struct {
	Start              Text         `yaml:"start"`
	StartSticker       Text         `yaml:"start_sticker"`
	AskDescription     Text         `yaml:"ask_description"`
	TaskCreated        Text         `yaml:"task_created"`
	CreationCancelled  Text         `yaml:"creation_cancelled"`
	CreationFailed     Text         `yaml:"creation_failed"`
	InvalidDescription Text         `yaml:"invalid_description"`
	LimitReached       Text         `yaml:"limit_reached"`
	TooManyTasks       Text         `yaml:"too_many_tasks"`
	NoTasks            Text         `yaml:"no_tasks"`
	AllTasksCompleted  Text         `yaml:"all_tasks_completed"`
	TaskNotFound       Text         `yaml:"task_not_found"`
	TaskCompletedToast Text         `yaml:"task_completed_toast"`
	TaskDeletedToast   Text         `yaml:"task_deleted_toast"`
	ListCaption        Text         `yaml:"list_caption"`
	Buttons            ButtonLabels `yaml:"buttons"`
}

// DefaultMessages returns the embedded catalog.
func DefaultMessages() *Messages {
	m, err := ParseMessages(defaultMessages)
	if err != nil {
		panic(fmt.Sprintf("embedded messages.yaml is invalid: %v", err))
	}
	return m
}

// LoadMessages reads a catalog file. Entries missing from the file keep
// their embedded defaults.
func LoadMessages(path string) (*Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	m := DefaultMessages()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseMessages decodes a complete catalog.
func ParseMessages(data []byte) (*Messages, error) {
	var m Messages
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Messages) validate() error {
	var errs []error
	required := map[string]string{
		"start":                m.Start.Text,
		"ask_description":      m.AskDescription.Text,
		"task_created":         m.TaskCreated.Text,
		"no_tasks":             m.NoTasks.Text,
		"buttons.list_tasks":   m.Buttons.ListTasks,
		"buttons.create_task":  m.Buttons.CreateTask,
		"buttons.complete":     m.Buttons.Complete,
		"buttons.delete":       m.Buttons.Delete,
		"buttons.back":         m.Buttons.Back,
		"all_tasks_completed":  m.AllTasksCompleted.Text,
		"limit_reached":        m.LimitReached.Text,
		"creation_cancelled":   m.CreationCancelled.Text,
		"task_not_found":       m.TaskNotFound.Text,
		"task_completed_toast": m.TaskCompletedToast.Text,
	}
	for key, value := range required {
		if value == "" {
			errs = append(errs, fmt.Errorf("message %q is empty", key))
		}
	}
	return errors.Join(errs...)
}
