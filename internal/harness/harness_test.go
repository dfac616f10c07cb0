package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return scenario
}

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"sequence_plate", "retimed_movie", "edit_collect"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_RecordsEngineErrorsInTrace(t *testing.T) {
	result, err := Run(loadTestScenario(t, "retimed_movie"))
	require.NoError(t, err)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, OpRemap, result.Trace[1].Op)
	assert.Equal(t, "NOT_SEQUENCE", result.Trace[1].Error)
	assert.Nil(t, result.Trace[1].Result)
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := loadTestScenario(t, "sequence_plate")
	scenario.Flow[0].Expect.Result["mediaOut"] = 1021
	scenario.Flow[2].Expect.Error = "NOT_SEQUENCE"

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected mediaOut = 1021, got 1020")
	assert.Contains(t, result.Errors[1], "expected error NOT_SEQUENCE, got RATE_MISMATCH")
}

func TestRun_UnexpectedEngineErrorFails(t *testing.T) {
	scenario := loadTestScenario(t, "retimed_movie")
	scenario.Flow[1].Expect = nil

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "remap sh020_ref failed")
}

func TestRun_CollectAssertions(t *testing.T) {
	scenario := loadTestScenario(t, "edit_collect")
	scenario.Assertions = append(scenario.Assertions,
		Assertion{Type: AssertShotRecorded, Shot: "sh030"},
		Assertion{Type: AssertShotCount, Count: 3},
		Assertion{Type: AssertShotRecorded, Shot: "sh010", Expect: map[string]any{"hasAudio": true}},
	)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{"rec-0001"}, result.Sessions)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `shot "sh030" in ledger`)
	assert.Contains(t, result.Errors[1], "expected 3 shots, got 2 shots")
	assert.Contains(t, result.Errors[2], "sh010.hasAudio = true")
}

func TestRun_SkippedClipAssertion(t *testing.T) {
	scenario := loadTestScenario(t, "edit_collect")
	scenario.Assertions = []Assertion{{Type: AssertClipSkipped, Shot: "sh010"}}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "clip not skipped")
}

func TestRun_UnknownClip(t *testing.T) {
	scenario := loadTestScenario(t, "edit_collect")
	scenario.Flow[0].Clip = "sh999"

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `clip "sh999" not found in timeline "edit_v001"`)
}

func TestRun_CollectNeedsTimeline(t *testing.T) {
	scenario := loadTestScenario(t, "sequence_plate")
	scenario.Flow = []Step{{Op: OpCollect}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect needs a timeline document")
}

func TestRun_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "edit_collect")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()
	doc, err := filepath.Abs(filepath.Join("testdata", "documents", "sequence_clip.otio"))
	require.NoError(t, err)

	passing := `
name: passing
description: "resolves"
document: ` + doc + `
flow:
  - op: resolve
    expect:
      result: { mediaIn: 1011 }
`
	failing := `
name: failing
description: "wrong expectation"
document: ` + doc + `
flow:
  - op: resolve
    expect:
      result: { mediaIn: 1 }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_passing.yaml"), []byte(passing), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_failing.yaml"), []byte(failing), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_broken.yml"), []byte("name: [\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	files, err := FindScenarioFiles(dir, "")
	require.NoError(t, err)
	require.Len(t, files, 3)

	suite := RunSuite(files)
	assert.Equal(t, 3, suite.Total)
	assert.Equal(t, 1, suite.Passed)
	assert.Equal(t, 2, suite.Failed)
	require.Len(t, suite.Failures, 2)
	assert.Equal(t, "failing", suite.Failures[0].Scenario)
	assert.Equal(t, "c_broken.yml", suite.Failures[1].Scenario)
	assert.Contains(t, suite.Failures[1].Errors[0], "failed to load scenario")

	filtered, err := FindScenarioFiles(dir, "a_*")
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	_, err = FindScenarioFiles(dir, "[")
	assert.Error(t, err)
}
