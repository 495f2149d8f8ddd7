// Package feed decides which calendar URL to sync from.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	appLog "shiftsync/internal/log"
)

var (
	ErrEmptyURL       = errors.New("feed URL is empty")
	ErrNoPrompter     = errors.New("feed URL not cached and no prompter available")
	ErrPromptCanceled = errors.New("feed URL prompt canceled")
)

// Source yields the calendar feed URL.
type Source interface {
	URL(ctx context.Context) (string, error)
}

// Prompter asks the user for a single line of text, re-asking until validate
// accepts it.
type Prompter interface {
	Prompt(ctx context.Context, message string, validate func(string) error) (string, error)
}

// Static is a fixed URL, typically supplied through the environment.
type Static string

func (s Static) URL(context.Context) (string, error) {
	u := strings.TrimSpace(string(s))
	if u == "" {
		return "", ErrEmptyURL
	}
	return u, nil
}

// CachedSource reads the URL from a file. When the file is missing or blank
// the Prompter is asked once and its answer is written to the file, so later
// runs skip the prompt.
type CachedSource struct {
	Path     string
	Prompter Prompter
}

func (s *CachedSource) URL(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		if u := strings.TrimSpace(string(data)); u != "" {
			return u, nil
		}
		appLog.Debug("feed URL cache file is blank", "path", s.Path)
	case errors.Is(err, fs.ErrNotExist):
		appLog.Debug("feed URL cache file not found", "path", s.Path)
	default:
		return "", fmt.Errorf("read feed URL cache: %w", err)
	}

	if s.Prompter == nil {
		return "", ErrNoPrompter
	}

	u, err := s.Prompter.Prompt(ctx, "Enter the iCal link:", ValidateURL)
	if err != nil {
		return "", err
	}
	u = strings.TrimSpace(u)
	if err := ValidateURL(u); err != nil {
		return "", err
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create feed URL cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, []byte(u), 0o600); err != nil {
		return "", fmt.Errorf("write feed URL cache: %w", err)
	}
	appLog.Info("feed URL saved", "path", s.Path)

	return u, nil
}

// ValidateURL accepts anything at least two characters long; the fetch will
// report anything that is not actually reachable.
func ValidateURL(s string) error {
	if len(strings.TrimSpace(s)) < 2 {
		return errors.New("please enter a valid link")
	}
	return nil
}
