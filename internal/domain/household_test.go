package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func intPtr(v int) *int { return &v }

func TestParseFilingStatus(t *testing.T) {
	tests := []struct {
		in   string
		want FilingStatus
	}{
		{"single", Single},
		{"MFJ", MarriedFilingJointly},
		{"married-filing-jointly", MarriedFilingJointly},
		{" joint ", MarriedFilingJointly},
		{"mfs", MarriedFilingSeparately},
		{"hoh", HeadOfHousehold},
		{"qualifying_widow", QualifyingSurvivingSpouse},
		{"", Single},
		{"polygamous", Single},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFilingStatus(tt.in))
		})
	}
}

func TestFilingStatus_Predicates(t *testing.T) {
	assert.True(t, MarriedFilingJointly.IsJoint())
	assert.True(t, QualifyingSurvivingSpouse.IsJoint())
	assert.False(t, MarriedFilingSeparately.IsJoint())
	assert.True(t, MarriedFilingSeparately.IsMarried())
	assert.False(t, HeadOfHousehold.IsMarried())
	assert.True(t, FilingStatus("mfj").IsJoint())
}

func TestFilingStatus_UnmarshalYAML(t *testing.T) {
	var d Demographics
	require.NoError(t, yaml.Unmarshal([]byte("filing_status: hoh\ntaxpayer_age: 50\n"), &d))
	assert.Equal(t, HeadOfHousehold, d.FilingStatus)
}

func TestDemographics_Normalized(t *testing.T) {
	tests := []struct {
		name      string
		in        Demographics
		want      Demographics
		noteCount int
	}{
		{
			name: "valid",
			in:   Demographics{TaxpayerAge: 70, SpouseAge: intPtr(68), FilingStatus: MarriedFilingJointly},
			want: Demographics{TaxpayerAge: 70, SpouseAge: intPtr(68), FilingStatus: MarriedFilingJointly},
		},
		{
			name:      "missing ages",
			in:        Demographics{TaxpayerAge: 0, SpouseAge: intPtr(-3), FilingStatus: MarriedFilingJointly},
			want:      Demographics{TaxpayerAge: DefaultAge, SpouseAge: intPtr(DefaultAge), FilingStatus: MarriedFilingJointly},
			noteCount: 2,
		},
		{
			name:      "unknown status",
			in:        Demographics{TaxpayerAge: 66, FilingStatus: "widowed"},
			want:      Demographics{TaxpayerAge: 66, FilingStatus: Single},
			noteCount: 1,
		},
		{
			name:      "age too high",
			in:        Demographics{TaxpayerAge: MaxAge + 1, FilingStatus: Single},
			want:      Demographics{TaxpayerAge: DefaultAge, FilingStatus: Single},
			noteCount: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notes := tt.in.Normalized()
			assert.Equal(t, tt.want, got)
			assert.Len(t, notes, tt.noteCount)
		})
	}
}

func TestDemographics_AgeOfAndSeniors(t *testing.T) {
	d := Demographics{TaxpayerAge: 67, SpouseAge: intPtr(63), FilingStatus: MarriedFilingJointly}
	assert.Equal(t, 67, d.AgeOf(OwnerTaxpayer))
	assert.Equal(t, 63, d.AgeOf(OwnerSpouse))
	assert.Equal(t, 1, d.SeniorCount())

	d.SpouseAge = intPtr(65)
	assert.Equal(t, 2, d.SeniorCount())

	d.FilingStatus = MarriedFilingSeparately
	assert.Equal(t, 1, d.SeniorCount(), "a separate filer's spouse is not on the return")

	single := Demographics{TaxpayerAge: 60}
	assert.Equal(t, 60, single.AgeOf(OwnerSpouse))
	assert.False(t, single.HasSpouse())
}

func TestSettings_YearAndSunset(t *testing.T) {
	var nilSettings *Settings
	assert.Equal(t, DefaultTaxYear, nilSettings.Year())
	assert.False(t, nilSettings.Sunset())

	s := &Settings{TaxYear: 2025, TCJASunset: true}
	assert.False(t, s.Sunset())
	s.TaxYear = 2026
	assert.True(t, s.Sunset())
}
