package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/graph/graphtest"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// execute runs the CLI with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

// writeFixture saves the Greek salad fixture as Turtle.
func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salad-bar.ttl")
	require.NoError(t, graph.Save(path, graphtest.GreekSalad().Graph(), graph.FormatTurtle))
	return path
}

func totalOf(t *testing.T, g *graph.Graph, node string) float64 {
	t.Helper()
	term, ok := g.Object(salad.IRI(node), salad.PropHasAmount)
	require.True(t, ok, "%s has no amount", node)
	v, ok := term.Float()
	require.True(t, ok)
	return v
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "saladbar version "+Version)
}

func TestRunWritesDerivedTotals(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "out.nt")

	stdout, err := execute(t, "run", "--graph", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run_id")

	g, err := graph.Load(out, graph.FormatNTriples)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, totalOf(t, g, "GreekSaladVitaminC"), 1e-9)
}

func TestRunDryRunLeavesFileAlone(t *testing.T) {
	in := writeFixture(t)
	before, err := os.ReadFile(in)
	require.NoError(t, err)

	_, err = execute(t, "run", "--graph", in, "--dry-run", "--output", "json")
	require.NoError(t, err)

	after, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunOverwritesWritableInput(t *testing.T) {
	in := writeFixture(t)

	_, err := execute(t, "run", "--graph", in)
	require.NoError(t, err)

	g, err := graph.Load(in, graph.FormatTurtle)
	require.NoError(t, err)
	assert.True(t, g.HasSubject(salad.IRI("GreekSaladNutrition")))
}

func TestRunRejectsReadOnlyInputWithoutOut(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "salad-bar.rdf")
	rdfxml := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="` + salad.ClassSalad + `"/>
</rdf:RDF>
`
	require.NoError(t, os.WriteFile(in, []byte(rdfxml), 0644))

	_, err := execute(t, "run", "--graph", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestResolveThenAggregateOneSalad(t *testing.T) {
	in := writeFixture(t)
	resolved := filepath.Join(t.TempDir(), "resolved.ttl")

	_, err := execute(t, "resolve", "--graph", in, "--out", resolved)
	require.NoError(t, err)

	stdout, err := execute(t, "aggregate", "--graph", resolved, "--salad", "GreekSalad", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "VitaminC")
	assert.Contains(t, stdout, "60")

	_, err = execute(t, "aggregate", "--graph", resolved, "--salad", "NoSuchSalad", "--dry-run")
	assert.Error(t, err)
}

func TestAuditJSON(t *testing.T) {
	in := writeFixture(t)

	stdout, err := execute(t, "audit", "--graph", in, "--output", "json")
	require.NoError(t, err)

	var report struct {
		Issues []struct {
			Category string `json:"category"`
			Subject  string `json:"subject"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotNil(t, report.Issues)
}

func TestClearTotals(t *testing.T) {
	in := writeFixture(t)
	_, err := execute(t, "run", "--graph", in)
	require.NoError(t, err)

	stdout, err := execute(t, "clear-totals", "--graph", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 3 derived nodes")

	g, err := graph.Load(in, graph.FormatTurtle)
	require.NoError(t, err)
	assert.False(t, g.HasSubject(salad.IRI("GreekSaladNutrition")))
}

func TestExportAndQuery(t *testing.T) {
	in := writeFixture(t)
	_, err := execute(t, "run", "--graph", in)
	require.NoError(t, err)

	stdout, err := execute(t, "export", "--graph", in, "--profile", "derived", "--export-format", "ntriples")
	require.NoError(t, err)
	assert.Contains(t, stdout, "GreekSaladVitaminC")

	dest := filepath.Join(t.TempDir(), "totals.jsonld")
	_, err = execute(t, "export", "--graph", in, "--profile", "derived", "--dest", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GreekSaladVitaminC")

	stdout, err = execute(t, "query", "levels", "--graph", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "VitaminC")
	assert.Contains(t, stdout, "High")

	stdout, err = execute(t, "query", "contains", "--graph", in, "--output", "json")
	require.NoError(t, err)
	var contains map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &contains))
	assert.Contains(t, contains["GreekSalad"], "VitaminC")
}

func TestUnknownProfile(t *testing.T) {
	in := writeFixture(t)
	_, err := execute(t, "export", "--graph", in, "--profile", "everything")
	assert.Error(t, err)
}

func TestWatchFileDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.ttl")
	require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 50*time.Millisecond, newLogger("error"), func() { calls.Add(1) })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("# change\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ttl"), []byte("x"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}
