package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())
}

func TestCyan(t *testing.T) {
	assert.Contains(t, Cyan("acme/widgets"), "acme/widgets")
}

func TestGradeColor(t *testing.T) {
	// Colors are disabled when stdout is not a terminal, so the text survives.
	assert.Contains(t, GradeColor("A", 3.9), "A")
	assert.Contains(t, GradeColor("B-", 2.4), "B-")
	assert.Contains(t, GradeColor("C", 1.8), "C")
	assert.Contains(t, GradeColor("F", 0.5), "F")
}

func TestScoreColor(t *testing.T) {
	assert.Contains(t, ScoreColor(90), "90")
	assert.Contains(t, ScoreColor(60), "60")
	assert.Contains(t, ScoreColor(30), "30")
}

func TestArchetypeColor(t *testing.T) {
	assert.Contains(t, ArchetypeColor("Rising Star", "purple"), "Rising Star")
	assert.Equal(t, "Coaster", ArchetypeColor("Coaster", "unknown"))
}

func TestNetLines(t *testing.T) {
	assert.Equal(t, "+12", NetLines(12))
	assert.Equal(t, "-340", NetLines(-340))
	assert.Equal(t, "0", NetLines(0))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Developer", "Grade"})
	require.NotNil(t, table)

	table.Append([]string{"alice", "A"})
	table.Append([]string{"bob", "C+"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "alice"), "table output should contain developer names")
	assert.True(t, strings.Contains(result, "C+"), "table output should contain grades")
}
