package security_test

import (
	"regexp"
	"testing"

	"examjudge/internal/judge/security"
)

func TestValidateBlocksForbiddenConstructs(t *testing.T) {
	t.Parallel()
	validator := security.NewValidator(nil)
	cases := []struct {
		name     string
		language string
		code     string
		pattern  string
	}{
		{
			name:     "node child_process",
			language: "javascript",
			code:     `const cp = require("child_process");`,
			pattern:  "child_process",
		},
		{
			name:     "node fs require",
			language: "javascript",
			code:     `const fs = require('fs');`,
			pattern:  "require fs",
		},
		{
			name:     "node eval",
			language: "javascript",
			code:     `eval("1+1")`,
			pattern:  "eval",
		},
		{
			name:     "python import os",
			language: "python",
			code:     "import os\nos.listdir('/')",
			pattern:  "import os",
		},
		{
			name:     "python subprocess from-import",
			language: "python",
			code:     "from subprocess import run",
			pattern:  "from subprocess import",
		},
		{
			name:     "python open",
			language: "python",
			code:     `data = open("/etc/passwd").read()`,
			pattern:  "open file",
		},
		{
			name:     "java runtime exec",
			language: "java",
			code:     `Process p = Runtime.getRuntime().start();`,
			pattern:  "Runtime.getRuntime",
		},
		{
			name:     "java process builder",
			language: "java",
			code:     `new ProcessBuilder("sh").start();`,
			pattern:  "ProcessBuilder",
		},
		{
			name:     "c system call",
			language: "cpp",
			code:     `int main() { system("rm -rf /"); }`,
			pattern:  "system call",
		},
		{
			name:     "c unistd include",
			language: "cpp",
			code:     "#include <unistd.h>\nint main() {}",
			pattern:  "unistd.h",
		},
	}
	for _, tc := range cases {
		violation := validator.Validate(tc.code, tc.language)
		if violation == nil {
			t.Fatalf("%s: expected violation, got none", tc.name)
		}
		if violation.PatternName != tc.pattern {
			t.Fatalf("%s: flagged pattern %q, want %q", tc.name, violation.PatternName, tc.pattern)
		}
	}
}

func TestValidateAllowsCleanCode(t *testing.T) {
	t.Parallel()
	validator := security.NewValidator(nil)
	cases := []struct {
		name     string
		language string
		code     string
	}{
		{
			name:     "javascript arithmetic",
			language: "javascript",
			code:     "const sum = (a, b) => a + b;\nconsole.log(sum(1, 2));",
		},
		{
			name:     "python arithmetic",
			language: "python",
			code:     "a, b = map(int, input().split())\nprint(a + b)",
		},
		{
			name:     "cpp arithmetic",
			language: "cpp",
			code:     "#include <iostream>\nint main() { int a, b; std::cin >> a >> b; std::cout << a + b; }",
		},
	}
	for _, tc := range cases {
		if violation := validator.Validate(tc.code, tc.language); violation != nil {
			t.Fatalf("%s: unexpected violation %q", tc.name, violation.PatternName)
		}
	}
}

func TestValidateReturnsFirstMatch(t *testing.T) {
	t.Parallel()
	validator := security.NewValidator(nil)
	code := "import os\nimport subprocess\n"
	violation := validator.Validate(code, "python")
	if violation == nil {
		t.Fatalf("expected violation")
	}
	if violation.PatternName != "import os" {
		t.Fatalf("expected first pattern in table order, got %q", violation.PatternName)
	}
}

func TestValidateCustomPatterns(t *testing.T) {
	t.Parallel()
	validator := security.NewValidator([]security.Pattern{
		{Name: "goto", Regexp: regexp.MustCompile(`\bgoto\b`)},
	})
	if violation := validator.Validate("import os", "python"); violation != nil {
		t.Fatalf("custom set should not include defaults, got %q", violation.PatternName)
	}
	violation := validator.Validate("goto fail;", "cpp")
	if violation == nil || violation.PatternName != "goto" {
		t.Fatalf("expected goto violation, got %+v", violation)
	}
}
