package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

const defaultSystemPrompt = "You are a witty, friendly teacher-bot. You write short spoken lessons with quizzes and respond with a single valid JSON object and nothing else."

const defaultLessonPrompt = `You are a witty, friendly teacher-bot. Create a short lesson for a {{.Role}} on the topic "{{.Topic}}".
Make it humorous (one clean joke or meme reference), conversational, and short enough to speak in about {{.LengthSeconds}} seconds.
Return only valid JSON (no extra text) with keys:
  - title: short title
  - script: the lesson text (3-6 short sentences)
  - quiz: an array of 3 objects each with keys: question, options (array of 4 strings), answer (exact match of the correct option)
Example:
{"title":"...","script":"...","quiz":[{"question":"...","options":["A","B","C","D"],"answer":"B"}]}
Make sure the JSON is parseable.`

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Lesson LessonPrompts `yaml:"lesson"`
}

type SystemPrompts struct {
	Default string `yaml:"default"`
}

type LessonPrompts struct {
	Generate string `yaml:"generate"`
}

type LessonParams struct {
	Topic         string
	Role          string
	LengthSeconds int
}

// Load reads prompts.yaml from the working directory when present and fills
// anything left unset with the built-in prompts.
func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	var p Prompts

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse prompts file: %w", err)
		}
	case os.IsNotExist(err):
		// built-in prompts cover everything
	default:
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	applyDefaults(&p)
	return &p, nil
}

func applyDefaults(p *Prompts) {
	if p.System.Default == "" {
		p.System.Default = defaultSystemPrompt
	}
	if p.Lesson.Generate == "" {
		p.Lesson.Generate = defaultLessonPrompt
	}
}

func (p *Prompts) RenderLesson(params LessonParams) (string, error) {
	return render(p.Lesson.Generate, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
