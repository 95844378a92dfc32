package publish

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	args []string
}

// scriptedExecutor records git invocations and answers by subcommand.
type scriptedExecutor struct {
	calls   []call
	outputs map[string]string
	errs    map[string]error
}

func (s *scriptedExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	s.calls = append(s.calls, call{dir: dir, args: args})
	sub := subcommand(args)
	return []byte(s.outputs[sub]), s.errs[sub]
}

func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}

func (s *scriptedExecutor) subcommands() []string {
	var subs []string
	for _, c := range s.calls {
		subs = append(subs, subcommand(c.args))
	}
	return subs
}

var at = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func TestPublishCommitsAndPushes(t *testing.T) {
	repo := t.TempDir()
	ex := &scriptedExecutor{outputs: map[string]string{
		"diff":      "data_hot_trends.json\n",
		"rev-parse": "abc123\n",
	}}
	p := NewPublisher(Config{
		RepoDir:     repo,
		Branch:      "main",
		AuthorName:  "stockcal-bot",
		AuthorEmail: "bot@stockcal.local",
		Push:        true,
	}, ex)

	res, err := p.Publish(context.Background(), []string{filepath.Join(repo, "data_hot_trends.json")}, at)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Pushed)
	assert.Equal(t, "abc123", res.Commit)
	assert.Equal(t, "chore(data): daily update 2026-10-15 08:00", res.Message)

	assert.Equal(t, []string{"add", "diff", "commit", "rev-parse", "push"}, ex.subcommands())
	assert.Equal(t, []string{"add", "--", "data_hot_trends.json"}, ex.calls[0].args)
	assert.Equal(t, []string{
		"-c", "user.name=stockcal-bot", "-c", "user.email=bot@stockcal.local",
		"commit", "-m", res.Message, "--", "data_hot_trends.json",
	}, ex.calls[2].args)
	assert.Equal(t, []string{"push", "origin", "HEAD:main"}, ex.calls[4].args)
	for _, c := range ex.calls {
		assert.Equal(t, repo, c.dir)
	}
}

func TestPublishNothingChanged(t *testing.T) {
	repo := t.TempDir()
	ex := &scriptedExecutor{}
	p := NewPublisher(Config{RepoDir: repo, Push: true}, ex)

	res, err := p.Publish(context.Background(), []string{filepath.Join(repo, "data_strategies.json")}, at)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, []string{"add", "diff"}, ex.subcommands())
}

func TestPublishNoFiles(t *testing.T) {
	ex := &scriptedExecutor{}
	res, err := NewPublisher(Config{}, ex).Publish(context.Background(), nil, at)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, ex.calls)
}

func TestPublishPushRejected(t *testing.T) {
	repo := t.TempDir()
	ex := &scriptedExecutor{
		outputs: map[string]string{"diff": "data_strategies.json\n", "rev-parse": "def456\n"},
		errs:    map[string]error{"push": errors.New("! [rejected] HEAD -> main (non-fast-forward)")},
	}
	p := NewPublisher(Config{RepoDir: repo, Push: true}, ex)

	res, err := p.Publish(context.Background(), []string{filepath.Join(repo, "data_strategies.json")}, at)
	assert.ErrorIs(t, err, ErrPushRejected)
	require.NotNil(t, res)
	assert.Equal(t, "def456", res.Commit, "local commit is kept")
	assert.False(t, res.Pushed)
}

func TestPublishWithoutPush(t *testing.T) {
	repo := t.TempDir()
	ex := &scriptedExecutor{outputs: map[string]string{"diff": "x\n", "rev-parse": "1\n"}}
	res, err := NewPublisher(Config{RepoDir: repo}, ex).
		Publish(context.Background(), []string{filepath.Join(repo, "data_events.json")}, at)
	require.NoError(t, err)
	assert.False(t, res.Pushed)
	assert.NotContains(t, ex.subcommands(), "push")
}

func TestPublishRejectsFilesOutsideRepo(t *testing.T) {
	ex := &scriptedExecutor{}
	_, err := NewPublisher(Config{RepoDir: t.TempDir()}, ex).
		Publish(context.Background(), []string{"/etc/passwd"}, at)
	assert.Error(t, err)
	assert.Empty(t, ex.calls)
}

// TestPublishWithGit exercises the real git binary against a bare remote.
func TestPublishWithGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	ctx := context.Background()
	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	work := filepath.Join(root, "work")
	ex := NewExecExecutor()

	run := func(dir string, args ...string) string {
		t.Helper()
		out, err := ex.Run(ctx, dir, "git", args...)
		require.NoError(t, err)
		return strings.TrimSpace(string(out))
	}

	run(root, "init", "--bare", remote)
	run(root, "init", work)
	run(work, "checkout", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(work, "data_strategies.json"), []byte(`{"updatedAt": "2026-10-14", "strategies": []}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "notes.txt"), []byte("untouched"), 0o644))
	run(work, "-c", "user.name=seed", "-c", "user.email=seed@local", "add", ".")
	run(work, "-c", "user.name=seed", "-c", "user.email=seed@local", "commit", "-m", "seed")
	run(work, "remote", "add", "origin", remote)
	run(work, "push", "origin", "main")

	require.NoError(t, os.WriteFile(filepath.Join(work, "data_strategies.json"), []byte(`{"updatedAt": "2026-10-15", "strategies": []}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "notes.txt"), []byte("edited"), 0o644))

	p := NewPublisher(Config{
		RepoDir:     work,
		Branch:      "main",
		AuthorName:  "stockcal-bot",
		AuthorEmail: "bot@stockcal.local",
		Push:        true,
	}, ex)
	res, err := p.Publish(ctx, []string{filepath.Join(work, "data_strategies.json")}, at)
	require.NoError(t, err)
	assert.True(t, res.Pushed)

	assert.Equal(t, res.Commit, run(remote, "rev-parse", "main"))
	assert.Equal(t, "data_strategies.json", run(work, "show", "--name-only", "--format=", "HEAD"))
	assert.Equal(t, "stockcal-bot", run(work, "log", "-1", "--format=%an"))
	assert.Contains(t, run(work, "status", "--porcelain"), "notes.txt", "unrelated edits are not committed")

	again, err := p.Publish(ctx, []string{filepath.Join(work, "data_strategies.json")}, at)
	require.NoError(t, err)
	assert.False(t, again.Changed)
}
