package security

import "regexp"

// Pattern is one forbidden construct with a stable name for reporting.
type Pattern struct {
	Name   string
	Regexp *regexp.Regexp
}

// DefaultPatterns covers process spawning, filesystem access, network
// access and dynamic evaluation across JavaScript, Python, Java and C++.
// The scan is language-agnostic on purpose: a cheap lexical gate, not a
// parser. It can be defeated by obfuscation.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// JavaScript / Node.js
		{Name: "child_process", Regexp: regexp.MustCompile(`child_process`)},
		{Name: "require fs", Regexp: regexp.MustCompile(`require\s*\(\s*['"]fs['"]\s*\)`)},
		{Name: "require net", Regexp: regexp.MustCompile(`require\s*\(\s*['"]net['"]\s*\)`)},
		{Name: "require http", Regexp: regexp.MustCompile(`require\s*\(\s*['"]https?['"]\s*\)`)},
		{Name: "process.exit", Regexp: regexp.MustCompile(`process\s*\.\s*exit`)},
		{Name: "eval", Regexp: regexp.MustCompile(`\beval\s*\(`)},
		{Name: "Function constructor", Regexp: regexp.MustCompile(`new\s+Function\s*\(`)},

		// Python
		{Name: "import os", Regexp: regexp.MustCompile(`\bimport\s+os\b`)},
		{Name: "import sys", Regexp: regexp.MustCompile(`\bimport\s+sys\b`)},
		{Name: "import subprocess", Regexp: regexp.MustCompile(`\bimport\s+subprocess\b`)},
		{Name: "import socket", Regexp: regexp.MustCompile(`\bimport\s+socket\b`)},
		{Name: "from os import", Regexp: regexp.MustCompile(`\bfrom\s+os\b`)},
		{Name: "from subprocess import", Regexp: regexp.MustCompile(`\bfrom\s+subprocess\b`)},
		{Name: "__import__", Regexp: regexp.MustCompile(`__import__`)},
		{Name: "exec", Regexp: regexp.MustCompile(`\bexec\s*\(`)},
		{Name: "open file", Regexp: regexp.MustCompile(`\bopen\s*\(`)},

		// Java
		{Name: "Runtime.getRuntime", Regexp: regexp.MustCompile(`Runtime\s*\.\s*getRuntime`)},
		{Name: "ProcessBuilder", Regexp: regexp.MustCompile(`ProcessBuilder`)},
		{Name: "java.io.File", Regexp: regexp.MustCompile(`java\s*\.\s*io\s*\.\s*File`)},
		{Name: "java.net", Regexp: regexp.MustCompile(`java\s*\.\s*net\s*\.`)},
		{Name: "System.exit", Regexp: regexp.MustCompile(`System\s*\.\s*exit`)},

		// C / C++
		{Name: "system call", Regexp: regexp.MustCompile(`\bsystem\s*\(`)},
		{Name: "popen", Regexp: regexp.MustCompile(`\bpopen\s*\(`)},
		{Name: "fork", Regexp: regexp.MustCompile(`\bfork\s*\(`)},
		{Name: "exec family", Regexp: regexp.MustCompile(`\bexec[lv]p?e?\s*\(`)},
		{Name: "unistd.h", Regexp: regexp.MustCompile(`#\s*include\s*<\s*unistd\.h\s*>`)},
		{Name: "fopen", Regexp: regexp.MustCompile(`\bfopen\s*\(`)},
		{Name: "FILE pointer", Regexp: regexp.MustCompile(`\bFILE\s*\*`)},
		{Name: "remove file", Regexp: regexp.MustCompile(`\bremove\s*\(\s*"`)},
		{Name: "socket include", Regexp: regexp.MustCompile(`#\s*include\s*<\s*sys/socket\.h\s*>`)},
	}
}
