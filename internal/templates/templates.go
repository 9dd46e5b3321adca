// Package templates embeds the document and message templates.
package templates

import (
	"embed"
)

//go:embed transcript/*.tmpl transcript/*.css messages/*.tmpl
var files embed.FS

// GetTranscript returns the case transcript document template content
func GetTranscript() (string, error) {
	content, err := files.ReadFile("transcript/document.html.tmpl")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// GetTranscriptStyle returns the stylesheet inlined into every transcript
func GetTranscriptStyle() (string, error) {
	content, err := files.ReadFile("transcript/style.css")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// GetMessage returns a chat message template by name (without extension)
func GetMessage(name string) (string, error) {
	content, err := files.ReadFile("messages/" + name + ".tmpl")
	if err != nil {
		return "", err
	}
	return string(content), nil
}
