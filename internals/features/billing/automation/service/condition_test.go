package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func mustParse(t *testing.T, raw string) []Clause {
	t.Helper()
	clauses, err := ParseConditions(datatypes.JSON(raw))
	require.NoError(t, err)
	return clauses
}

func TestParseConditionsEmptyMeansNoRequirement(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", "  []  "} {
		clauses, err := ParseConditions(datatypes.JSON(raw))
		assert.NoError(t, err, raw)
		assert.Nil(t, clauses, raw)
	}
}

func TestParseConditionsRejectsMalformed(t *testing.T) {
	// Bukan array.
	_, err := ParseConditions(datatypes.JSON(`{"field":"age","op":"gte","value":6}`))
	assert.Error(t, err)

	// Operator tidak dikenal.
	_, err = ParseConditions(datatypes.JSON(`[{"field":"age","op":"between","value":6}]`))
	assert.Error(t, err)

	// Field kosong.
	_, err = ParseConditions(datatypes.JSON(`[{"field":"  ","op":"eq","value":1}]`))
	assert.Error(t, err)
}

func TestEvaluateNumericComparisons(t *testing.T) {
	facts := map[string]interface{}{"age": float64(10), "belt_level": int16(3)}

	ok, err := EvaluateConditions(mustParse(t, `[{"field":"age","op":"gte","value":6}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateConditions(mustParse(t, `[{"field":"age","op":"lt","value":10}]`), facts)
	require.NoError(t, err)
	assert.False(t, ok)

	// int16 dari model dibandingkan dengan angka JSON (float64).
	ok, err = EvaluateConditions(mustParse(t, `[{"field":"belt_level","op":"eq","value":3}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateAndSemantics(t *testing.T) {
	clauses := mustParse(t, `[{"field":"age","op":"gte","value":6},{"field":"age","op":"lte","value":12}]`)

	ok, err := EvaluateConditions(clauses, map[string]interface{}{"age": 9})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateConditions(clauses, map[string]interface{}{"age": 15})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateMissingFieldFailsClauseWithoutError(t *testing.T) {
	ok, err := EvaluateConditions(mustParse(t, `[{"field":"age","op":"gte","value":6}]`), map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateNumericOpOnNonNumberErrors(t *testing.T) {
	_, err := EvaluateConditions(
		mustParse(t, `[{"field":"belt","op":"gt","value":2}]`),
		map[string]interface{}{"belt": "hijau"},
	)
	assert.Error(t, err)
}

func TestEvaluateInAndNin(t *testing.T) {
	facts := map[string]interface{}{"billing_type": "monthly"}

	ok, err := EvaluateConditions(mustParse(t, `[{"field":"billing_type","op":"in","value":["monthly","yearly"]}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateConditions(mustParse(t, `[{"field":"billing_type","op":"nin","value":["per_session"]}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)

	// Nilai bukan array = error, bukan diam-diam gagal.
	_, err = EvaluateConditions(mustParse(t, `[{"field":"billing_type","op":"in","value":"monthly"}]`), facts)
	assert.Error(t, err)
}

func TestEvaluateInAgainstListFactIntersects(t *testing.T) {
	// Fact berupa daftar (program yang diikuti keluarga): in = beririsan.
	facts := map[string]interface{}{"program_codes": []string{"KARATE", "JUDO"}}

	ok, err := EvaluateConditions(mustParse(t, `[{"field":"program_codes","op":"in","value":["JUDO","AIKIDO"]}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateConditions(mustParse(t, `[{"field":"program_codes","op":"nin","value":["AIKIDO"]}]`), facts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateConditions(mustParse(t, `[{"field":"program_codes","op":"in","value":["AIKIDO"]}]`), facts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateEqAcrossTypes(t *testing.T) {
	// String dibanding angka tidak pernah sama.
	ok, err := EvaluateConditions(
		mustParse(t, `[{"field":"siblings","op":"eq","value":"2"}]`),
		map[string]interface{}{"siblings": 2},
	)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = EvaluateConditions(
		mustParse(t, `[{"field":"is_trial","op":"eq","value":true}]`),
		map[string]interface{}{"is_trial": true},
	)
	require.NoError(t, err)
	assert.True(t, ok)
}
