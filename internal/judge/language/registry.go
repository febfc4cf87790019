package language

import (
	"path/filepath"
	"strings"

	appErr "examjudge/pkg/errors"

	"github.com/google/shlex"
)

// Spec describes how to compile and run one supported language.
// Command templates are expanded with {src}, {bin} and {dir} placeholders
// before being split shell-style.
type Spec struct {
	ID             string `yaml:"id"`
	SourceFile     string `yaml:"sourceFile"`
	BinaryFile     string `yaml:"binaryFile"`
	CompileCmdTpl  string `yaml:"compileCmd"`
	RunCmdTpl      string `yaml:"runCmd"`
	CompileEnabled bool   `yaml:"compileEnabled"`
}

// DefaultSpecs returns the built-in language table.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			ID:         "javascript",
			SourceFile: "solution.js",
			RunCmdTpl:  "node {src}",
		},
		{
			ID:         "python",
			SourceFile: "solution.py",
			RunCmdTpl:  "python3 {src}",
		},
		{
			ID:             "java",
			SourceFile:     "Main.java",
			BinaryFile:     "Main.class",
			CompileCmdTpl:  "javac {src}",
			RunCmdTpl:      "java -cp {dir} Main",
			CompileEnabled: true,
		},
		{
			ID:             "cpp",
			SourceFile:     "solution.cpp",
			BinaryFile:     "solution",
			CompileCmdTpl:  "g++ -O2 -o {bin} {src}",
			RunCmdTpl:      "{bin}",
			CompileEnabled: true,
		},
	}
}

// Registry is an immutable lookup table of language specs.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from the given specs.
// A nil or empty list falls back to DefaultSpecs.
func NewRegistry(specs []Spec) *Registry {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}
	table := make(map[string]Spec, len(specs))
	for _, s := range specs {
		table[strings.ToLower(s.ID)] = s
	}
	return &Registry{specs: table}
}

// Lookup resolves a language id, case-insensitively.
func (r *Registry) Lookup(id string) (Spec, error) {
	spec, ok := r.specs[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Spec{}, appErr.New(appErr.LanguageNotSupported).
			WithDetail("language", id)
	}
	return spec, nil
}

// IDs returns the supported language ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	return ids
}

// BuildCommand expands a command template against the working directory
// and splits it shell-style.
func (s Spec) BuildCommand(tpl, workDir string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", filepath.Join(workDir, s.SourceFile))
	if s.BinaryFile != "" {
		expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(workDir, s.BinaryFile))
	}
	expanded = strings.ReplaceAll(expanded, "{dir}", workDir)

	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command is empty after expansion")
	}
	return fields, nil
}

// CompileCommand expands the compile template. Languages without a compile
// step return nil.
func (s Spec) CompileCommand(workDir string) ([]string, error) {
	if !s.CompileEnabled {
		return nil, nil
	}
	return s.BuildCommand(s.CompileCmdTpl, workDir)
}

// RunCommand expands the run template.
func (s Spec) RunCommand(workDir string) ([]string, error) {
	return s.BuildCommand(s.RunCmdTpl, workDir)
}
