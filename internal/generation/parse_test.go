package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lifequest/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose", "Here you go: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := extractJSON("} nothing {")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeRejectsBrokenJSON(t *testing.T) {
	var payload missionsPayload
	err := decode(`{"missions": [ {"title": }`, &payload)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRepairMissionsEmptyPayload(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	missions := templates.repairMissions(nil, nil, models.RECURRENCE_DAILY)
	require.Len(t, missions, 3)
	for i, m := range missions {
		assert.Equal(t, models.Difficulties[i], m.Difficulty)
		assert.Equal(t, models.RECURRENCE_DAILY, m.RecurrenceType)
	}
}

func TestCategoryOrderCoversAllCategories(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	order := templates.CategoryOrder(&models.Profile{Dependents: 2, InsurancePreferences: []string{"LIFESTYLE", "bogus"}})
	assert.ElementsMatch(t, models.Categories, order)
	assert.Equal(t, models.CATEGORY_LIFESTYLE, order[0])
	assert.Equal(t, models.CATEGORY_FAMILY_PROTECTION, order[1])
}
