package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is a prompt template found in one of the prompt directories
type Entry struct {
	Name string // Relative path without the .toml extension, forward slashes
	Dir  string // Directory it was found in
}

// Find returns the path of the named template.
// Later directories take precedence over earlier ones.
func Find(promptName string, promptDirs []string) (string, error) {
	promptFile := promptName
	if !strings.HasSuffix(promptFile, ".toml") {
		promptFile = promptFile + ".toml"
	}

	var promptPath string
	for _, promptDir := range promptDirs {
		candidatePath := filepath.Join(promptDir, filepath.FromSlash(promptFile))
		if _, err := os.Stat(candidatePath); err == nil {
			promptPath = candidatePath
		}
	}

	if promptPath == "" {
		return "", fmt.Errorf("prompt file '%s' not found in any of the prompt directories: %v", promptFile, promptDirs)
	}
	return promptPath, nil
}

// Resolve loads the named template, or builds one from the plain system prompt
// when no name is given.
func Resolve(promptName, systemPrompt string, promptDirs []string) (*Prompt, error) {
	if promptName == "" {
		return &Prompt{System: systemPrompt}, nil
	}

	path, err := Find(promptName, promptDirs)
	if err != nil {
		return nil, err
	}

	p, err := LoadPrompt(path)
	if err != nil {
		return nil, fmt.Errorf("error loading prompt file: %v", err)
	}
	return p, nil
}

// List walks every prompt directory and returns the templates sorted by name.
// A name found in several directories is reported once, with the directory Find would use.
func List(promptDirs []string) ([]Entry, error) {
	seen := make(map[string]int)
	var entries []Entry

	for _, promptDir := range promptDirs {
		if _, err := os.Stat(promptDir); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(promptDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".toml") {
				return nil
			}

			relPath, err := filepath.Rel(promptDir, path)
			if err != nil {
				return nil
			}

			name := filepath.ToSlash(strings.TrimSuffix(relPath, ".toml"))
			if i, ok := seen[name]; ok {
				entries[i].Dir = promptDir
				return nil
			}
			seen[name] = len(entries)
			entries = append(entries, Entry{Name: name, Dir: promptDir})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking prompt directory %s: %w", promptDir, err)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
