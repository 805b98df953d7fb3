package git

import (
	"fmt"
	"os/exec"
	"strings"
)

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// LocalRemote returns the origin remote URL of the checkout containing path.
// It lets the CLI analyze "." without typing the repository name.
func LocalRemote(path string) (string, error) {
	out, err := gitCmd(path, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%s has no origin remote", path)
	}
	return out, nil
}

// ResolveLocal resolves the GitHub repository behind a local checkout.
func ResolveLocal(path string) (Ref, error) {
	remote, err := LocalRemote(path)
	if err != nil {
		return Ref{}, err
	}
	return Resolve(remote)
}
