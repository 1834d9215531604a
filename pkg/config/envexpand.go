package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands environment variables in YAML content using Go template
// syntax: {{.OPENAI_API_KEY}} becomes the value of OPENAI_API_KEY. $VAR is
// never expanded, so literal dollar signs in values (passwords, regex
// patterns) survive untouched.
//
// Missing variables expand to the empty string; validation catches required
// fields that end up empty. Content that fails to parse or execute as a
// template is returned unchanged so the YAML parser can report the real
// problem.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("suite").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			env[key] = value
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, env); err != nil {
		return data
	}
	return buf.Bytes()
}
