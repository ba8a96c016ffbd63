package deb

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Paragraph is one stanza of a Debian control file. Keys are lower-cased.
type Paragraph map[string]string

// ParseControl parses the Debian control file format into paragraphs
func ParseControl(data []byte) ([]Paragraph, error) {
	var paragraphs []Paragraph
	current := Paragraph{}

	var currentKey string
	var currentValue strings.Builder

	flushField := func() {
		if currentKey != "" {
			current[currentKey] = strings.TrimSpace(currentValue.String())
		}
		currentKey = ""
		currentValue.Reset()
	}
	flushParagraph := func() {
		flushField()
		if len(current) > 0 {
			paragraphs = append(paragraphs, current)
		}
		current = Paragraph{}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// Empty line = end of paragraph
		if strings.TrimSpace(line) == "" {
			flushParagraph()
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		// Handle continuation lines (start with space)
		if line[0] == ' ' || line[0] == '\t' {
			if currentKey == "" {
				return nil, fmt.Errorf("line %d: continuation line without field", lineNo)
			}
			currentValue.WriteString("\n")
			currentValue.WriteString(strings.TrimSpace(line))
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("line %d: malformed field %q", lineNo, line)
		}

		flushField()
		currentKey = strings.ToLower(strings.TrimSpace(key))
		currentValue.WriteString(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flushParagraph()
	return paragraphs, nil
}
