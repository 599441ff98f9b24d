package cron

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Markers delimit the block of crontab lines pgtools owns. Everything
// between them is rewritten on apply; everything outside is never
// touched.
const (
	BeginMarker = "# pgtools:begin"
	EndMarker   = "# pgtools:end"
)

// Crontab reads and replaces the invoking user's crontab.
type Crontab interface {
	Read() (string, error)
	Write(content string) error
}

// SystemCrontab talks to the real crontab command.
type SystemCrontab struct{}

func (SystemCrontab) Read() (string, error) {
	out, err := exec.Command("crontab", "-l").CombinedOutput()
	if err != nil {
		// An absent crontab is not an error, it is just empty
		if strings.Contains(string(out), "no crontab for") {
			return "", nil
		}
		return "", fmt.Errorf("error reading crontab: %v: %s", err, out)
	}
	return string(out), nil
}

func (SystemCrontab) Write(content string) error {
	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(content)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("error installing crontab: %v: %s", err, out)
	}
	return nil
}

// Diff is the entry-level delta between the installed block and the
// declared entries.
type Diff struct {
	Added   []string
	Removed []string
}

// Desired renders the schedule lines for the declared entries. binPath
// is the pgtools binary the lines invoke.
func Desired(entries []Entry, binPath string) []string {
	var lines []string
	for _, e := range entries {
		lines = append(lines, e.Schedule+" "+binPath+" "+e.Command)
	}
	return lines
}

// Sync computes the rewritten crontab text and the entry delta. It
// never touches the system; Apply does.
func Sync(current string, desired []string) (string, Diff, error) {
	foreign, managed, err := splitManaged(current)
	if err != nil {
		return "", Diff{}, err
	}
	return render(foreign, desired), diffLines(managed, desired), nil
}

// Apply rewrites the crontab so its managed block matches the declared
// entries exactly. A second apply with the same entries is a no-op.
func Apply(ct Crontab, entries []Entry, binPath string, logger *logrus.Logger) (Diff, error) {
	current, err := ct.Read()
	if err != nil {
		return Diff{}, err
	}

	updated, diff, err := Sync(current, Desired(entries, binPath))
	if err != nil {
		return Diff{}, err
	}

	if updated == current {
		logger.Info("Crontab already up to date")
		return diff, nil
	}

	if err := ct.Write(updated); err != nil {
		return Diff{}, err
	}
	logger.Infof("Crontab updated: %d entries added, %d removed", len(diff.Added), len(diff.Removed))
	return diff, nil
}

// Status reports the delta without writing. The second return value is
// true when the installed block already matches.
func Status(ct Crontab, entries []Entry, binPath string) (Diff, bool, error) {
	current, err := ct.Read()
	if err != nil {
		return Diff{}, false, err
	}

	updated, diff, err := Sync(current, Desired(entries, binPath))
	if err != nil {
		return Diff{}, false, err
	}
	return diff, updated == current, nil
}

// Remove deletes the managed block, leaving foreign lines untouched.
// Returns true when there was a block to remove.
func Remove(ct Crontab, logger *logrus.Logger) (bool, error) {
	current, err := ct.Read()
	if err != nil {
		return false, err
	}

	updated, _, err := Sync(current, nil)
	if err != nil {
		return false, err
	}

	if updated == current {
		return false, nil
	}

	if err := ct.Write(updated); err != nil {
		return false, err
	}
	logger.Info("Removed managed crontab block")
	return true, nil
}

// splitManaged separates the installed crontab into the lines pgtools
// owns and everything else. Foreign lines keep their order.
func splitManaged(current string) (foreign, managed []string, err error) {
	inBlock := false
	seen := false
	for _, line := range strings.Split(current, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == BeginMarker:
			if inBlock || seen {
				return nil, nil, fmt.Errorf("crontab has more than one %q marker", BeginMarker)
			}
			inBlock = true
			seen = true
		case trimmed == EndMarker:
			if !inBlock {
				return nil, nil, fmt.Errorf("crontab has %q without a preceding %q", EndMarker, BeginMarker)
			}
			inBlock = false
		case inBlock:
			if trimmed != "" {
				managed = append(managed, trimmed)
			}
		default:
			foreign = append(foreign, line)
		}
	}
	if inBlock {
		return nil, nil, fmt.Errorf("crontab has %q without a matching %q", BeginMarker, EndMarker)
	}
	return foreign, managed, nil
}

// render rebuilds the crontab text with the managed block at the end.
// With no desired entries the markers disappear entirely.
func render(foreign, desired []string) string {
	for len(foreign) > 0 && strings.TrimSpace(foreign[len(foreign)-1]) == "" {
		foreign = foreign[:len(foreign)-1]
	}

	var b strings.Builder
	for _, line := range foreign {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(desired) > 0 {
		if len(foreign) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(BeginMarker + "\n")
		for _, line := range desired {
			b.WriteString(line + "\n")
		}
		b.WriteString(EndMarker + "\n")
	}
	return b.String()
}

func diffLines(managed, desired []string) Diff {
	have := make(map[string]bool, len(managed))
	for _, line := range managed {
		have[line] = true
	}
	want := make(map[string]bool, len(desired))
	for _, line := range desired {
		want[line] = true
	}

	var d Diff
	for _, line := range desired {
		if !have[line] {
			d.Added = append(d.Added, line)
		}
	}
	for _, line := range managed {
		if !want[line] {
			d.Removed = append(d.Removed, line)
		}
	}
	return d
}
