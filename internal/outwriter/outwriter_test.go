package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Workers:        2,
		Precision:      2,
		Output:         schema.TextOut,
		Width:          120,
		HistoryBackend: schema.NoneBackend,
	}
}

func sampleRuns() []schema.RunResult {
	return []schema.RunResult{
		{
			RunID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			FormID:   "backend-interview",
			Source:   "alice.yaml",
			Policy:   schema.WeightedPolicy,
			Total:    7.4,
			Progress: schema.Progress{Total: 3, Answered: 3},
			Nodes: []schema.NodeResult{
				{Kind: schema.CriterionNode, Title: "Communication", Available: true, Value: 8, Weight: 40, Share: 0.4},
				{Kind: schema.GroupNode, Title: "Technical", Available: true, Value: 7, Weight: 60, Share: 0.6},
				{Kind: schema.CriterionNode, Path: []string{"Technical"}, Title: "Testing", Weight: 50},
			},
		},
		{
			RunID:    uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			FormID:   "backend-interview",
			Source:   "carol.yaml",
			Policy:   schema.WeightedPolicy,
			Total:    0,
			Progress: schema.Progress{Total: 3, Skipped: 2, Pending: 1},
		},
	}
}

func readOutput(t *testing.T, cfg *contract.Config, write func() error) string {
	t.Helper()
	cfg.OutputFile = filepath.Join(t.TempDir(), "out")
	require.NoError(t, write())
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func TestPrintRunResultsTable(t *testing.T) {
	cfg := testConfig()
	out := readOutput(t, cfg, func() error { return PrintRunResults(sampleRuns(), cfg, time.Second) })

	assert.Contains(t, out, "alice.yaml")
	assert.Contains(t, out, "7.40")
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "Poor")
	assert.Contains(t, out, "3/3")
	assert.Contains(t, out, "Scored 2 run(s)")
	assert.NotContains(t, out, "Breakdown")
}

func TestPrintRunResultsExplainTable(t *testing.T) {
	cfg := testConfig()
	cfg.Explain = true
	out := readOutput(t, cfg, func() error { return PrintRunResults(sampleRuns(), cfg, time.Second) })

	assert.Contains(t, out, "Breakdown for alice.yaml (weighted policy)")
	assert.Contains(t, out, "Testing")
	assert.Contains(t, out, "60.00%")
}

func TestPrintRunResultsJSON(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	out := readOutput(t, cfg, func() error { return PrintRunResults(sampleRuns(), cfg, time.Second) })

	var result []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result, 2)
	assert.Equal(t, float64(1), result[0]["rank"])
	assert.Equal(t, "Good", result[0]["label"])
	assert.Equal(t, "alice.yaml", result[0]["source"])
	assert.Equal(t, 7.4, result[0]["total"])
	assert.Len(t, result[0]["nodes"], 3)
	assert.NotContains(t, result[1], "nodes")
}

func TestPrintRunResultsCSV(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	out := readOutput(t, cfg, func() error { return PrintRunResults(sampleRuns(), cfg, time.Second) })

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank,source,form_id,policy,total"))
	assert.Equal(t, "1,alice.yaml,backend-interview,weighted,7.40,Good,3,0,0,3,11111111-1111-1111-1111-111111111111", lines[1])
	assert.Equal(t, "2,carol.yaml,backend-interview,weighted,0.00,Poor,0,2,1,3,22222222-2222-2222-2222-222222222222", lines[2])
}

func TestPrintRunResultsExplainCSV(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.Explain = true
	out := readOutput(t, cfg, func() error { return PrintRunResults(sampleRuns(), cfg, time.Second) })

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4) // header + alice's three nodes
	assert.Equal(t, "source,run_id,path,title,kind,available,value,weight,share", lines[0])
	assert.Contains(t, lines[2], "Technical,group,true,7.00,60.00,0.6000")
	assert.Contains(t, lines[3], "Technical,Testing,criterion,false")
}

func TestLabelFor(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "Excellent", labelFor(9, cfg))
	assert.Equal(t, "Fair", labelFor(4, cfg))
}
