package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

// keywords satisfies both keyword checks so measurement findings stand alone.
const keywords = " Ventilation via openings. Fire-resistant doors."

func TestCheckRules_NoMeasurementsNoKeywords(t *testing.T) {
	for _, text := range []string{"", "plain description of a garden shed", "!!!\x00\n\t"} {
		issues := CheckRules(text, standards.Default())

		require.Len(t, issues, 2, "text %q", text)
		assert.Equal(t, KindMissingVentilation, issues[0].Kind)
		assert.Equal(t, KindMissingFireSafety, issues[1].Kind)
		assert.Equal(t, "No clear mention of ventilation requirements in the document", issues[0].Message)
		assert.Equal(t, "No clear mention of fire safety requirements in the document", issues[1].Message)
	}
}

func TestCheckRules_Heights(t *testing.T) {
	tbl := standards.Default()
	require.Equal(t, 2.1, tbl.ClearHeight.NonHabitableRooms)
	require.Equal(t, 2.4, tbl.ClearHeight.HabitableRooms)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"below non-habitable", "room 2.0m high", []string{
			"Found room height of 2m, which is below minimum non-habitable room height of 2.1m",
		}},
		{"between minimums", "room 2.2m high", []string{
			"Found room height of 2.2m, which may be acceptable for non-habitable rooms but is below minimum habitable room height of 2.4m",
		}},
		{"compliant", "room 2.5m high", nil},
		{"at habitable minimum", "room 2.4m high", nil},
		{"at non-habitable minimum", "room 2.1m high", []string{
			"Found room height of 2.1m, which may be acceptable for non-habitable rooms but is below minimum habitable room height of 2.4m",
		}},
		{"noise ignored", "sill 0.5m and 300mm", nil},
		{"british spelling", "ceiling 2.2 metres", []string{
			"Found room height of 2.2m, which may be acceptable for non-habitable rooms but is below minimum habitable room height of 2.4m",
		}},
		{"millimetres", "ceiling 2000 millimetres", []string{
			"Found room height of 2m, which is below minimum non-habitable room height of 2.1m",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckRuleStrings(tt.text+keywords, tbl)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRules_HeightIssueCarriesNumbers(t *testing.T) {
	issues := CheckRules("2.0m"+keywords, standards.Default())

	require.Len(t, issues, 1)
	assert.Equal(t, SourceRule, issues[0].Source)
	assert.Equal(t, constants.ClearHeight, issues[0].Standard)
	require.NotNil(t, issues[0].Measured)
	require.NotNil(t, issues[0].Threshold)
	assert.Equal(t, 2.0, *issues[0].Measured)
	assert.Equal(t, 2.1, *issues[0].Threshold)
}

func TestCheckRules_Areas(t *testing.T) {
	got := CheckRuleStrings("store 5 sq m, hall 0.8 m2, lounge 14 m2"+keywords, standards.Default())

	assert.Equal(t, []string{
		"Found room area of 5 sq m, which is below minimum habitable room area of 7 sq m",
	}, got)
}

func TestCheckRules_Storeys(t *testing.T) {
	tbl := standards.Default()

	got := CheckRules("a 5-storey building"+keywords, tbl)
	require.Len(t, got, 1)
	assert.Equal(t, KindExceedsResidential, got[0].Kind)
	assert.Equal(t, "Found 5 storeys, which exceeds maximum residential building height of 4 storeys", got[0].Message)

	got = CheckRules("a 3-storey house"+keywords, tbl)
	require.Len(t, got, 1)
	assert.Equal(t, KindExceedsDwelling, got[0].Kind)
	assert.Contains(t, got[0].Message, "Grade B construction")

	assert.Empty(t, CheckRules("a 2-storey house"+keywords, tbl))
}

func TestCheckRules_FixedOrder(t *testing.T) {
	got := CheckRules("5-storey, 3 sq m room, 2.0m ceiling", standards.Default())

	kinds := make([]IssueKind, 0, len(got))
	for _, i := range got {
		kinds = append(kinds, i.Kind)
	}
	assert.Equal(t, []IssueKind{
		KindHeightBelowNonHabitable,
		KindAreaBelowHabitable,
		KindExceedsResidential,
		KindMissingVentilation,
		KindMissingFireSafety,
	}, kinds)
}

func TestCheckRules_KeywordsCaseInsensitive(t *testing.T) {
	assert.Empty(t, CheckRules("VENTILATION and NON-COMBUSTIBLE cladding", standards.Default()))
}
