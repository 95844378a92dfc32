package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrPushRejected means the remote refused the push (permissions, or a
// non-fast-forward after a concurrent run). The local commit remains.
var ErrPushRejected = errors.New("push rejected")

// Config holds the repository settings.
type Config struct {
	RepoDir     string
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Push        bool
}

// Result describes a publish.
type Result struct {
	Changed bool
	Commit  string
	Message string
	Pushed  bool
}

// Publisher stages, commits and pushes dataset files with git.
type Publisher struct {
	cfg  Config
	exec Executor
}

// NewPublisher creates a publisher. A nil executor uses os/exec.
func NewPublisher(cfg Config, executor Executor) *Publisher {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if executor == nil {
		executor = NewExecExecutor()
	}
	return &Publisher{cfg: cfg, exec: executor}
}

// CommitMessage returns the message used for a publish at t.
func CommitMessage(t time.Time) string {
	return "chore(data): daily update " + t.Format("2006-01-02 15:04")
}

// Publish commits the given files and pushes the commit. Only the listed
// paths are committed. When none of them changed nothing is committed and
// Result.Changed is false. No conflict resolution or retry is attempted.
func (p *Publisher) Publish(ctx context.Context, files []string, at time.Time) (*Result, error) {
	if len(files) == 0 {
		return &Result{}, nil
	}

	paths, err := p.relPaths(files)
	if err != nil {
		return nil, err
	}

	if _, err := p.git(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return nil, fmt.Errorf("stage files: %w", err)
	}

	out, err := p.git(ctx, append([]string{"diff", "--cached", "--name-only", "--"}, paths...)...)
	if err != nil {
		return nil, fmt.Errorf("inspect staged files: %w", err)
	}
	if strings.TrimSpace(string(out)) == "" {
		log.Info().Strs("files", paths).Msg("Datasets unchanged, nothing to publish")
		return &Result{}, nil
	}

	msg := CommitMessage(at)
	commitArgs := p.identityArgs()
	commitArgs = append(commitArgs, "commit", "-m", msg, "--")
	commitArgs = append(commitArgs, paths...)
	if _, err := p.git(ctx, commitArgs...); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out, err = p.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("resolve commit: %w", err)
	}
	res := &Result{
		Changed: true,
		Commit:  strings.TrimSpace(string(out)),
		Message: msg,
	}

	log.Info().
		Str("commit", res.Commit).
		Str("message", msg).
		Strs("files", paths).
		Msg("Datasets committed")

	if !p.cfg.Push {
		return res, nil
	}

	ref := "HEAD"
	if p.cfg.Branch != "" {
		ref = "HEAD:" + p.cfg.Branch
	}
	if _, err := p.git(ctx, "push", p.cfg.Remote, ref); err != nil {
		return res, fmt.Errorf("%w: %v", ErrPushRejected, err)
	}
	res.Pushed = true

	log.Info().
		Str("remote", p.cfg.Remote).
		Str("ref", ref).
		Msg("Datasets pushed")

	return res, nil
}

func (p *Publisher) git(ctx context.Context, args ...string) ([]byte, error) {
	return p.exec.Run(ctx, p.cfg.RepoDir, "git", args...)
}

func (p *Publisher) identityArgs() []string {
	var args []string
	if p.cfg.AuthorName != "" {
		args = append(args, "-c", "user.name="+p.cfg.AuthorName)
	}
	if p.cfg.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+p.cfg.AuthorEmail)
	}
	return args
}

// relPaths makes files relative to the repository so commands stay valid
// regardless of the data directory's spelling.
func (p *Publisher) relPaths(files []string) ([]string, error) {
	if p.cfg.RepoDir == "" {
		return files, nil
	}
	repo, err := filepath.Abs(p.cfg.RepoDir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(repo, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("%s is outside repository %s", f, p.cfg.RepoDir)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths, nil
}
