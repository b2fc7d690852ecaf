package integration

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
)

// PublishError records which git step failed
type PublishError struct {
	Step string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("git %s: %v", e.Step, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// commandRunner executes one command in dir and returns its standard output
type commandRunner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

// GitPublisher commits and pushes output files when the working tree has changed
type GitPublisher struct {
	repoDir string
	push    bool
	run     commandRunner
}

// NewGitPublisher creates a publisher for the repository at repoDir
func NewGitPublisher(repoDir string, push bool) *GitPublisher {
	return &GitPublisher{
		repoDir: repoDir,
		push:    push,
		run:     runCommand,
	}
}

// Publish stages, commits and pushes paths. It is a no-op when none of them differ from HEAD
// and the branch has no unpushed commits.
func (p *GitPublisher) Publish(ctx context.Context, message string, paths ...string) error {
	paths, err := p.relativePaths(paths)
	if err != nil {
		return &PublishError{Step: "resolve", Err: err}
	}

	statusArgs := append([]string{"status", "--porcelain", "--branch", "--"}, paths...)
	out, err := p.run(ctx, p.repoDir, "git", statusArgs...)
	if err != nil {
		return &PublishError{Step: "status", Err: err}
	}
	changed, ahead := parseStatus(string(out))

	if !changed {
		if ahead && p.push {
			log.Printf("Branch is ahead of its upstream, pushing earlier commits")
			if _, err := p.run(ctx, p.repoDir, "git", "push"); err != nil {
				return &PublishError{Step: "push", Err: err}
			}
			return nil
		}
		log.Printf("No changes in %s, skipping publish", strings.Join(paths, ", "))
		return nil
	}

	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := p.run(ctx, p.repoDir, "git", addArgs...); err != nil {
		return &PublishError{Step: "add", Err: err}
	}

	commitArgs := append([]string{"commit", "-m", message, "--"}, paths...)
	if _, err := p.run(ctx, p.repoDir, "git", commitArgs...); err != nil {
		return &PublishError{Step: "commit", Err: err}
	}

	if p.push {
		if _, err := p.run(ctx, p.repoDir, "git", "push"); err != nil {
			return &PublishError{Step: "push", Err: err}
		}
	}

	log.Printf("Published %d file(s): %s", len(paths), message)
	return nil
}

// parseStatus reads `git status --porcelain --branch` output: whether any path
// changed, and whether the branch header reports unpushed commits
func parseStatus(out string) (changed, ahead bool) {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			ahead = strings.Contains(line, "[ahead ") || strings.Contains(line, ", ahead ")
			continue
		}
		changed = true
	}
	return changed, ahead
}

// relativePaths expresses output paths relative to the repository root
func (p *GitPublisher) relativePaths(paths []string) ([]string, error) {
	root, err := filepath.Abs(p.repoDir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("%s is outside repository %s", path, root)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

func runCommand(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}
