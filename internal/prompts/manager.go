package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const (
	FeedbackTemplate  = "feedback"
	QuestionsTemplate = "questions"
)

// PromptProvider builds prompts from named templates
type PromptProvider interface {
	BuildPrompt(name string, data any) (*Prompt, error)
}

// rendered prompt pair
type Prompt struct {
	System string
	User   string
}

// loaded prompt template
type PromptTemplate struct {
	SystemPrompt string `yaml:"system_prompt"`
	Prompt       string `yaml:"prompt"`
}

type compiledTemplate struct {
	system string
	user   *template.Template
}

type PromptManager struct {
	templates map[string]compiledTemplate
}

var funcs = template.FuncMap{"join": strings.Join}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates: make(map[string]compiledTemplate),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds the prompt pair for the named template
func (pm *PromptManager) BuildPrompt(name string, data any) (*Prompt, error) {
	tmpl, exists := pm.templates[name]
	if !exists {
		return nil, fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.user.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return &Prompt{System: tmpl.system, User: buf.String()}, nil
}

// names of the loaded templates, sorted
func (pm *PromptManager) GetTemplates() []string {
	names := make([]string, 0, len(pm.templates))
	for name := range pm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		user, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(promptTemplate.Prompt)
		if err != nil {
			return fmt.Errorf("failed to compile template %s: %w", entry.Name(), err)
		}

		pm.templates[name] = compiledTemplate{
			system: strings.TrimSpace(promptTemplate.SystemPrompt),
			user:   user,
		}
	}

	return nil
}
