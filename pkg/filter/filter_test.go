package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstmt/fsg/pkg/dataset"
)

func testDataset() *dataset.Dataset {
	return dataset.New([]dataset.Row{
		{Year: 2024, Period: 1, Code1: "700", Name1: "Sales", StatementType: "income", AccountCode: "7001", Amount: 500},
		{Year: 2024, Period: 2, Code1: "700", Name1: "Sales", StatementType: "income", AccountCode: "7002", Amount: 300},
		{Year: 2024, Period: 2, Code1: "600", Name1: "Purchases", StatementType: "income", AccountCode: "6001", Amount: -200},
		{Year: 2025, Period: 1, Code1: "100", Name1: "Machinery", StatementType: "balance", AccountCode: "1000", Amount: 1500},
	})
}

func TestApplyEmptySpecIsIdentity(t *testing.T) {
	ds := testDataset()
	result := Apply(Spec{}, ds)

	assert.Same(t, ds, result)
	assert.Equal(t, ds.Len(), result.Len())
}

func TestApply(t *testing.T) {
	ds := testDataset()

	tests := []struct {
		name     string
		spec     Spec
		expected []string // account codes of matching rows, in dataset order
	}{
		{
			name:     "scalar exact match",
			spec:     Spec{"code1": "700"},
			expected: []string{"7001", "7002"},
		},
		{
			name:     "scalar no match",
			spec:     Spec{"code1": "999"},
			expected: []string{},
		},
		{
			name:     "list ORs values",
			spec:     Spec{"code1": []any{"600", "100"}},
			expected: []string{"6001", "1000"},
		},
		{
			name:     "fields AND together",
			spec:     Spec{"code1": "700", "account_code": "7002"},
			expected: []string{"7002"},
		},
		{
			name:     "numeric scalar compares numerically",
			spec:     Spec{"account_code": 7001},
			expected: []string{"7001"},
		},
		{
			name:     "numeric range",
			spec:     Spec{"account_code": map[string]any{"gte": 6000, "lt": 7002}},
			expected: []string{"7001", "6001"},
		},
		{
			name:     "string range",
			spec:     Spec{"code1": map[string]any{"gte": "600", "lte": "700"}},
			expected: []string{"7001", "7002", "6001"},
		},
		{
			name:     "range with single operator",
			spec:     Spec{"account_code": map[string]any{"gt": 6999}},
			expected: []string{"7001", "7002"},
		},
		{
			name:     "statement type",
			spec:     Spec{"statement_type": "balance"},
			expected: []string{"1000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Apply(tt.spec, ds)

			codes := make([]string, 0, result.Len())
			for _, row := range result.Rows() {
				codes = append(codes, row.AccountCode)
			}
			assert.Equal(t, tt.expected, codes)
		})
	}
}

func TestApplyKeepsParentYears(t *testing.T) {
	ds := testDataset()
	result := Apply(Spec{"code1": "700"}, ds)

	// Filtering away every 2025 row must not shrink the known year set.
	assert.Equal(t, []int{2024, 2025}, result.Years())
}

func TestApplySafe(t *testing.T) {
	ds := testDataset()

	result, err := ApplySafe(Spec{"code1": "700"}, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())

	_, err = ApplySafe(Spec{"bogus": "1"}, ds)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 1)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		spec          Spec
		expectedValid bool
		expectedErrs  int
	}{
		{name: "empty spec", spec: Spec{}, expectedValid: true},
		{name: "scalar string", spec: Spec{"code1": "700"}, expectedValid: true},
		{name: "scalar number", spec: Spec{"account_code": 7001}, expectedValid: true},
		{name: "list", spec: Spec{"code1": []any{"600", "700"}}, expectedValid: true},
		{name: "range", spec: Spec{"code1": map[string]any{"gte": "600", "lt": "800"}}, expectedValid: true},
		{name: "unknown field", spec: Spec{"year": 2024}, expectedValid: false, expectedErrs: 1},
		{name: "null scalar", spec: Spec{"code1": nil}, expectedValid: false, expectedErrs: 1},
		{name: "empty list", spec: Spec{"code1": []any{}}, expectedValid: false, expectedErrs: 1},
		{name: "null in list", spec: Spec{"code1": []any{"600", nil}}, expectedValid: false, expectedErrs: 1},
		{name: "empty range", spec: Spec{"code1": map[string]any{}}, expectedValid: false, expectedErrs: 1},
		{name: "unknown range operator", spec: Spec{"code1": map[string]any{"between": "1"}}, expectedValid: false, expectedErrs: 1},
		{name: "null range bound", spec: Spec{"code1": map[string]any{"gte": nil}}, expectedValid: false, expectedErrs: 1},
		{name: "mixed range bound types", spec: Spec{"code1": map[string]any{"gte": "600", "lte": 700}}, expectedValid: false, expectedErrs: 1},
		{
			name:          "all problems reported together",
			spec:          Spec{"bogus": "1", "code1": nil, "code2": []any{}},
			expectedValid: false,
			expectedErrs:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.spec)
			assert.Equal(t, tt.expectedValid, result.IsValid)
			assert.Len(t, result.Errors, tt.expectedErrs)
		})
	}
}

func TestValidateNamesOffendingFields(t *testing.T) {
	result := Validate(Spec{"bogus": "1", "code1": nil})
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "bogus")
	assert.Contains(t, result.Errors[1], "code1")
}
