package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ProjectRoot returns the root of the git worktree containing path, or "" when path is not inside one.
// It is used as the project folder of files opened outside of a project.
func ProjectRoot(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get worktree for %s: %w", path, err)
	}

	return wt.Filesystem.Root(), nil
}
