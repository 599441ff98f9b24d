package cron

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrontab struct {
	content string
	writes  int
	readErr error
}

func (f *fakeCrontab) Read() (string, error) { return f.content, f.readErr }

func (f *fakeCrontab) Write(content string) error {
	f.content = content
	f.writes++
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const binPath = "/usr/local/bin/pgtools"

func nightly() []Entry {
	return []Entry{
		{Schedule: "0 3 * * *", Command: "auto --jobs 2"},
		{Schedule: "0 12 * * 0", Command: "analyze --schema public"},
	}
}

func TestDesired(t *testing.T) {
	lines := Desired(nightly(), binPath)

	require.Len(t, lines, 2)
	assert.Equal(t, "0 3 * * * /usr/local/bin/pgtools auto --jobs 2", lines[0])
	assert.Equal(t, "0 12 * * 0 /usr/local/bin/pgtools analyze --schema public", lines[1])
}

func TestApplyEmptyCrontab(t *testing.T) {
	ct := &fakeCrontab{}

	diff, err := Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)

	assert.Len(t, diff.Added, 2)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, BeginMarker+"\n"+
		"0 3 * * * /usr/local/bin/pgtools auto --jobs 2\n"+
		"0 12 * * 0 /usr/local/bin/pgtools analyze --schema public\n"+
		EndMarker+"\n", ct.content)
}

func TestApplyIdempotent(t *testing.T) {
	ct := &fakeCrontab{}

	_, err := Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)
	installed := ct.content

	diff, err := Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, installed, ct.content)
	assert.Equal(t, 1, ct.writes, "second apply must not rewrite the crontab")
}

func TestApplyPreservesForeignLines(t *testing.T) {
	ct := &fakeCrontab{content: "PATH=/usr/bin\n0 1 * * * /usr/bin/certbot renew\n"}

	_, err := Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ct.content, "PATH=/usr/bin\n0 1 * * * /usr/bin/certbot renew\n"))
	assert.Contains(t, ct.content, BeginMarker)
	assert.Contains(t, ct.content, EndMarker)
}

func TestApplySyncsDelta(t *testing.T) {
	// The installed block has a stale entry that is no longer declared
	ct := &fakeCrontab{content: BeginMarker + "\n" +
		"0 4 * * * /usr/local/bin/pgtools vacuum --schema legacy\n" +
		"0 3 * * * /usr/local/bin/pgtools auto --jobs 2\n" +
		EndMarker + "\n"}

	diff, err := Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"0 12 * * 0 /usr/local/bin/pgtools analyze --schema public"}, diff.Added)
	assert.Equal(t, []string{"0 4 * * * /usr/local/bin/pgtools vacuum --schema legacy"}, diff.Removed)

	assert.NotContains(t, ct.content, "legacy")
	assert.Equal(t, 1, strings.Count(ct.content, BeginMarker), "apply must never accumulate blocks")
}

func TestRemove(t *testing.T) {
	ct := &fakeCrontab{content: "PATH=/usr/bin\n\n" + BeginMarker + "\n" +
		"0 3 * * * /usr/local/bin/pgtools auto\n" +
		EndMarker + "\n"}

	removed, err := Remove(ct, testLogger())
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "PATH=/usr/bin\n", ct.content)

	removed, err = Remove(ct, testLogger())
	require.NoError(t, err)
	assert.False(t, removed, "nothing left to remove")
	assert.Equal(t, 1, ct.writes)
}

func TestStatus(t *testing.T) {
	ct := &fakeCrontab{}

	diff, synced, err := Status(ct, nightly(), binPath)
	require.NoError(t, err)
	assert.False(t, synced)
	assert.Len(t, diff.Added, 2)
	assert.Zero(t, ct.writes, "status must not write")

	_, err = Apply(ct, nightly(), binPath, testLogger())
	require.NoError(t, err)

	_, synced, err = Status(ct, nightly(), binPath)
	require.NoError(t, err)
	assert.True(t, synced)
}

func TestSyncMalformedBlock(t *testing.T) {
	_, _, err := Sync(BeginMarker+"\n0 3 * * * something\n", nil)
	require.Error(t, err)

	_, _, err = Sync(EndMarker+"\n", nil)
	require.Error(t, err)
}
