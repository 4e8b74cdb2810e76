package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Tezigudo/SaladBarOntology/declaration"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/graph/graphtest"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditInconsistentSubstanceUnit(t *testing.T) {
	b := graphtest.New()
	for i := 0; i < 9; i++ {
		entity := fmt.Sprintf("Leaf%d", i)
		b.Individual(entity, "Ingredient").
			SubstancePortion(entity, "Iron", 2, "mg/100g").
			LinkSubstancePortion(entity, "Iron")
	}
	b.Individual("Lentil", "Ingredient").
		SubstancePortion("Lentil", "Iron", 3300, "mcg/100g").
		LinkSubstancePortion("Lentil", "Iron")

	report := New(b.Graph(), WithLogger(quietLogger())).Audit()

	issues := report.ByCategory(CategoryInconsistentUnit)
	require.Len(t, issues, 1)
	assert.Equal(t, "Iron", issues[0].Subject)
	assert.Equal(t, []string{"LentilIron"}, issues[0].Related)
	assert.Contains(t, issues[0].Detail, "mcg/100g (1)")
	assert.Contains(t, issues[0].Detail, "mg/100g (9)")
}

func TestAuditConsistentUnitsNoIssue(t *testing.T) {
	b := graphtest.GreekSalad().
		LinkSubstancePortion("Tomato", "VitaminC")

	report := New(b.Graph(), WithLogger(quietLogger())).Audit()
	for _, is := range report.ByCategory(CategoryInconsistentUnit) {
		assert.NotEqual(t, "VitaminC", is.Subject)
	}
}

func TestAuditUniformNonCanonicalUnit(t *testing.T) {
	// OliveOilFat is declared in g/100g, consistent but not canonical.
	b := graphtest.GreekSalad().LinkSubstancePortion("OliveOil", "Fat")

	issues := New(b.Graph(), WithLogger(quietLogger())).Audit().ByCategory(CategoryInconsistentUnit)
	require.Len(t, issues, 1)
	assert.Equal(t, "Fat", issues[0].Subject)
	assert.Equal(t, []string{"OliveOilFat"}, issues[0].Related)
}

func TestAuditMissingSubstancePortion(t *testing.T) {
	b := graphtest.GreekSalad().
		Subclass("Vegetable", "Ingredient").
		Individual("Cucumber", "Vegetable").
		LinkSubstancePortion("Tomato", "VitaminC")

	issues := New(b.Graph(), WithLogger(quietLogger())).Audit().ByCategory(CategoryMissingSubstancePortion)
	subjects := make([]string, 0, len(issues))
	for _, is := range issues {
		subjects = append(subjects, is.Subject)
	}
	assert.Equal(t, []string{"Cucumber", "OliveOil"}, subjects)
}

func TestAuditNoExpectedUnit(t *testing.T) {
	b := graphtest.New().
		Individual("Caffeine", "Substance").
		Individual("Tea", "Ingredient").
		SubstancePortion("Tea", "Caffeine", 20, "mg/100g").
		Add("TeaCaffeine", "hasSubstance", "Caffeine").
		Add("Tea", "hasSubstancePortion", "TeaCaffeine")

	report := New(b.Graph(), WithLogger(quietLogger())).Audit()
	issues := report.ByCategory(CategoryNoExpectedUnit)
	require.Len(t, issues, 1)
	assert.Equal(t, "Caffeine", issues[0].Subject)
	assert.Empty(t, report.ByCategory(CategoryInconsistentUnit))
}

func TestAuditPortions(t *testing.T) {
	b := graphtest.New().
		Individual("Tomato", "Ingredient").
		Individual("Tomato300g", "IngredientPortion").
		Individual("Ranch", "Dressing").
		Individual("Ranch30g", "DressingPortion").
		Add("Ranch30g", "hasDressing", "Ranch").
		Literal("Ranch30g", "hasUnit", graph.String("grams")).
		Literal("Ranch30g", "hasAmount", graph.Decimal(-30)).
		Salad("HouseSalad", nil, []string{"Ranch30g"})

	report := New(b.Graph(), WithLogger(quietLogger())).Audit()

	assert.Equal(t, 1, report.Counts()[CategoryUnlinkedPortion])
	assert.Equal(t, "Tomato300g", report.ByCategory(CategoryUnlinkedPortion)[0].Subject)
	assert.Equal(t, "Tomato300g", report.ByCategory(CategoryOrphanPortion)[0].Subject)
	assert.Equal(t, "Ranch30g", report.ByCategory(CategoryPortionUnit)[0].Subject)
	assert.Equal(t, "Ranch30g", report.ByCategory(CategoryNegativeAmount)[0].Subject)
}

func TestAuditDanglingSubstancePortion(t *testing.T) {
	b := graphtest.GreekSalad()
	report := New(b.Graph(), WithLogger(quietLogger())).Audit()

	dangling := report.ByCategory(CategoryDanglingSubstancePortion)
	require.Len(t, dangling, 2)
	assert.Equal(t, "OliveOilFat", dangling[0].Subject)
}

func TestAuditDeclarations(t *testing.T) {
	decl := declaration.NewSet()
	require.NoError(t, decl.Add("GreekSalad", "Tomato300g", "menu.yaml"))
	require.NoError(t, decl.Add("GreekSalad", "Feta50g", "menu.yaml"))
	require.NoError(t, decl.Add("CobbSalad", "Bacon20g", "menu.yaml"))

	report := New(graphtest.GreekSalad().Graph(), WithDeclarations(decl), WithLogger(quietLogger())).Audit()

	issues := report.ByCategory(CategoryUnresolvedDeclaration)
	require.Len(t, issues, 2)
	assert.Equal(t, "CobbSalad -> Bacon20g", issues[0].Subject)
	assert.Equal(t, "unknown salad CobbSalad, unknown portion Bacon20g (menu.yaml)", issues[0].Detail)
	assert.Equal(t, "GreekSalad -> Feta50g", issues[1].Subject)
}

func TestAuditIsReadOnly(t *testing.T) {
	g := graphtest.GreekSalad().Graph()
	snapshot := g.Clone()

	New(g, WithLogger(quietLogger())).Audit()
	assert.True(t, snapshot.Equal(g))
}

func TestRender(t *testing.T) {
	report := Report{Issues: []Issue{
		{Category: CategoryInconsistentUnit, Subject: "Iron", Detail: "units found", Related: []string{"LentilIron"}},
	}}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Render(&buf, FormatText))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "CATEGORY"))
		assert.Contains(t, out, "[LentilIron]")
		assert.Contains(t, out, "1 issue(s)")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Render(&buf, FormatJSON))
		var back Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, report, back)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Render(&buf, FormatYAML))
		var back Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, report, back)
	})

	t.Run("empty json has list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Report{}.Render(&buf, FormatJSON))
		assert.Contains(t, buf.String(), `"issues": []`)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, report.Render(io.Discard, "xml"))
	})
}

func TestIssueSubjectsUseLocalNames(t *testing.T) {
	report := New(graphtest.GreekSalad().Graph(), WithLogger(quietLogger())).Audit()
	for _, is := range report.Issues {
		assert.NotContains(t, is.Subject, salad.Namespace)
	}
}
