package importer

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Options configures how the git fast-import subprocess is invoked.
type Options struct {
	// GitCommand is the git binary to run. Defaults to "git".
	GitCommand string
	// GitRepo is the repository git operates against (its -C argument).
	GitRepo string
	// GitGlobalOptions are passed to git before the fast-import subcommand.
	GitGlobalOptions []string
	// GitFastImportOptions are passed to git fast-import itself.
	GitFastImportOptions []string
}

func (o Options) gitCommand() string {
	if o.GitCommand == "" {
		return "git"
	}
	return o.GitCommand
}

// PreflightError reports that the preflight git invocation failed, carrying
// enough of the subprocess's output to diagnose why.
type PreflightError struct {
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("importer: running %q failed: %v\n\nstdout:\n%s\n\nstderr:\n%s",
		e.Command, e.Err, e.Stdout, e.Stderr)
}

func (e *PreflightError) Unwrap() error { return e.Err }

// Preflight checks that git is executable and that opt.GitRepo is a valid
// repository, before any import work begins. `git rev-parse
// --is-inside-work-tree` succeeds silently for a valid repository and
// fails otherwise.
func Preflight(opt Options) error {
	cmd := exec.Command(opt.gitCommand(), "-C", opt.GitRepo, "rev-parse", "--is-inside-work-tree")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}
	return &PreflightError{
		Command: fmt.Sprintf("%s -C %s rev-parse --is-inside-work-tree", opt.gitCommand(), opt.GitRepo),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Err:     runErr,
	}
}
