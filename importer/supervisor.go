// Package importer supervises the `git fast-import` subprocess: it owns
// the single writer goroutine that serializes commands onto the child's
// stdin, and pipes the child's stdout/stderr into the application's own
// logging.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cvsfastimport/cvsfastimport/fastimport"
)

type commandKind int

const (
	cmdBlob commandKind = iota
	cmdCommit
	cmdTag
	cmdCheckpoint
	cmdProgress
	cmdReset
)

type markResult struct {
	mark fastimport.Mark
	err  error
}

type command struct {
	kind commandKind

	blob    fastimport.Blob
	commit  *fastimport.Commit
	tag     fastimport.Tag
	message string

	branchRef string
	from      *fastimport.Mark

	reply chan markResult
}

// Supervisor owns a spawned `git fast-import` process and the single
// goroutine allowed to write to its stdin. Blob/Commit/Tag/Checkpoint/
// Progress/LightweightTag may be called concurrently from many goroutines —
// each call hands its command to the writer goroutine over a channel and
// blocks for the reply. Close must not be called until every such call has
// returned.
type Supervisor struct {
	logger    *logrus.Logger
	cmd       *exec.Cmd
	commands  chan command
	done      chan error
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New spawns `git fast-import` per opt and starts the writer goroutine. If
// markFile names an existing, non-empty mark file, the writer resumes from
// its last mark and passes it to git as both --import-marks and
// --export-marks; otherwise only --export-marks is set, so the run starts a
// fresh mark sequence.
func New(logger *logrus.Logger, markFile string, opt Options) (*Supervisor, error) {
	args := []string{"-C", opt.GitRepo}
	args = append(args, opt.GitGlobalOptions...)
	args = append(args, "fast-import", "--allow-unsafe-features")

	var resume fastimport.Mark
	haveResume := false
	if markFile != "" {
		if f, err := os.Open(markFile); err == nil {
			m, ok, err := fastimport.LastMark(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("importer: reading mark file %s: %w", markFile, err)
			}
			if ok {
				resume, haveResume = m, true
				args = append(args, "--import-marks="+markFile)
			}
		}
		args = append(args, "--export-marks="+markFile)
	}
	args = append(args, opt.GitFastImportOptions...)

	cmd := exec.Command(opt.gitCommand(), args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("importer: establishing stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("importer: establishing stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("importer: establishing stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("importer: spawning %s: %w", opt.gitCommand(), err)
	}

	go logPipe(logger, "fast-import/stdout", stdout)
	go logPipe(logger, "fast-import/stderr", stderr)

	writer := fastimport.NewWriter(stdin)
	if haveResume {
		writer.Resume(resume)
	}

	s := &Supervisor{
		logger:   logger,
		cmd:      cmd,
		commands: make(chan command),
		done:     make(chan error, 1),
		closed:   make(chan struct{}),
	}
	go s.run(writer, stdin)
	return s, nil
}

func logPipe(logger *logrus.Logger, name string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.Debugf("%s: %s", name, scanner.Text())
	}
}

func (s *Supervisor) run(writer *fastimport.Writer, stdin io.WriteCloser) {
	for cmd := range s.commands {
		switch cmd.kind {
		case cmdBlob:
			mark, err := writer.Command(cmd.blob)
			cmd.reply <- markResult{mark: mark, err: err}
		case cmdCommit:
			mark, err := writer.Command(cmd.commit)
			cmd.reply <- markResult{mark: mark, err: err}
		case cmdTag:
			mark, err := writer.Command(cmd.tag)
			cmd.reply <- markResult{mark: mark, err: err}
		case cmdCheckpoint:
			cmd.reply <- markResult{err: writer.Checkpoint()}
		case cmdProgress:
			cmd.reply <- markResult{err: writer.Progress(cmd.message)}
		case cmdReset:
			cmd.reply <- markResult{err: writer.Reset(cmd.branchRef, cmd.from)}
		}
	}
	err := stdin.Close()
	if waitErr := s.cmd.Wait(); waitErr != nil {
		err = waitErr
	}
	s.done <- err
}

func (s *Supervisor) send(cmd command) (fastimport.Mark, error) {
	select {
	case <-s.closed:
		return 0, &ClosedError{}
	default:
	}
	cmd.reply = make(chan markResult, 1)
	s.commands <- cmd
	result := <-cmd.reply
	return result.mark, result.err
}

// Blob writes a blob command, returning its mark.
func (s *Supervisor) Blob(blob fastimport.Blob) (fastimport.Mark, error) {
	return s.send(command{kind: cmdBlob, blob: blob})
}

// Commit writes a commit command, returning its mark.
func (s *Supervisor) Commit(commit *fastimport.Commit) (fastimport.Mark, error) {
	return s.send(command{kind: cmdCommit, commit: commit})
}

// Tag writes a tag command, returning its mark.
func (s *Supervisor) Tag(tag fastimport.Tag) (fastimport.Mark, error) {
	return s.send(command{kind: cmdTag, tag: tag})
}

// LightweightTag points refs/tags/name at commitMark without creating a tag
// object.
func (s *Supervisor) LightweightTag(name string, commitMark fastimport.Mark) error {
	from := commitMark
	_, err := s.send(command{kind: cmdReset, branchRef: "refs/tags/" + name, from: &from})
	return err
}

// SetBranch points refs/heads/branch at mark. Commits already move their own
// branch ref as a side effect of being written; this is only needed when a
// branch's head advances without a new commit, i.e. when content reuse
// fast-forwards a branch onto a commit originally emitted for another one.
func (s *Supervisor) SetBranch(branch string, mark fastimport.Mark) error {
	from := mark
	_, err := s.send(command{kind: cmdReset, branchRef: "refs/heads/" + branch, from: &from})
	return err
}

// Checkpoint forces git fast-import to flush pending work.
func (s *Supervisor) Checkpoint() error {
	_, err := s.send(command{kind: cmdCheckpoint})
	return err
}

// Progress asks git fast-import to echo message to its own stdout.
func (s *Supervisor) Progress(message string) error {
	_, err := s.send(command{kind: cmdProgress, message: message})
	return err
}

// Close stops accepting commands, waits for git fast-import to flush and
// exit, and returns any error it exited with. Close is safe to call more
// than once; later calls return the first call's result.
func (s *Supervisor) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		close(s.commands)
		s.closeErr = <-s.done
	})
	return s.closeErr
}
