package graph_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/graph/graphtest"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want graph.Format
	}{
		{"salad.owl", graph.FormatRDFXML},
		{"salad.rdf", graph.FormatRDFXML},
		{"salad.TTL", graph.FormatTurtle},
		{"dir/salad.nt", graph.FormatNTriples},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := graph.FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := graph.FormatFromPath("salad.json")
	assert.ErrorIs(t, err, graph.ErrUnsupportedFormat)

	f, err := graph.ParseFormat("TTL")
	require.NoError(t, err)
	assert.Equal(t, graph.FormatTurtle, f)
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, format := range []graph.Format{graph.FormatTurtle, graph.FormatNTriples} {
		t.Run(string(format), func(t *testing.T) {
			g := graphtest.GreekSalad().Graph()

			var buf bytes.Buffer
			require.NoError(t, graph.Write(&buf, g, format))

			back, err := graph.Read(&buf, format)
			require.NoError(t, err)
			assert.True(t, g.Equal(back), "round trip changed the graph")
		})
	}
}

func TestWriteRDFXMLUnsupported(t *testing.T) {
	err := graph.Write(&bytes.Buffer{}, graph.New(), graph.FormatRDFXML)
	assert.ErrorIs(t, err, graph.ErrUnsupportedFormat)
}

func TestReadRDFXML(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:sb="` + salad.Namespace + `">
  <rdf:Description rdf:about="` + salad.Namespace + `TomatoVitaminC">
    <rdf:type rdf:resource="` + salad.ClassSubstancePortion + `"/>
    <sb:hasAmount rdf:datatype="http://www.w3.org/2001/XMLSchema#decimal">20.0</sb:hasAmount>
    <sb:hasUnit>mg/100g</sb:hasUnit>
  </rdf:Description>
</rdf:RDF>`

	g, err := graph.Read(strings.NewReader(doc), graph.FormatRDFXML)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	amount, ok := g.Object(salad.IRI("TomatoVitaminC"), salad.PropHasAmount)
	require.True(t, ok)
	v, ok := amount.Float()
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	unit, ok := g.Object(salad.IRI("TomatoVitaminC"), salad.PropHasUnit)
	require.True(t, ok)
	assert.Equal(t, "mg/100g", unit.Value)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := graph.Load(filepath.Join(t.TempDir(), "absent.ttl"), graph.FormatTurtle)
	require.Error(t, err)
	assert.True(t, graph.IsIOFailure(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttl")
	require.NoError(t, os.WriteFile(path, []byte("this is <not turtle"), 0644))

	_, err := graph.Load(path, graph.FormatTurtle)
	require.Error(t, err)
	assert.True(t, graph.IsIOFailure(err))
}

func TestSaveAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salad.ttl")
	g := graphtest.GreekSalad().Graph()

	require.NoError(t, graph.Save(path, g, graph.FormatTurtle))
	back, err := graph.Load(path, graph.FormatTurtle)
	require.NoError(t, err)
	assert.True(t, g.Equal(back))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// A failed save must leave the previous file in place.
	err = graph.Save(path, g, graph.FormatRDFXML)
	require.Error(t, err)
	assert.True(t, graph.IsIOFailure(err))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be removed")
}
