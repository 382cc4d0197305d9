package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
)

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		want    string
	}{
		{"09:00", 30, "09:30"},
		{"09:45", 30, "10:15"},
		{"11:30", 30, "12:00"},
		{"17:30", 30, "18:00"},
		{"23:45", 30, "00:15"},
	}
	for _, tc := range tests {
		got, err := AddMinutes(tc.in, tc.minutes)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "AddMinutes(%s, %d)", tc.in, tc.minutes)
	}

	_, err := AddMinutes("9:00", 30)
	assert.ErrorIs(t, err, &apperrors.Error{Kind: apperrors.KindValidation})
}

func TestValidateTime(t *testing.T) {
	assert.NoError(t, ValidateTime("08:00"))
	assert.NoError(t, ValidateTime("23:59"))
	assert.Error(t, ValidateTime("8:00"))
	assert.Error(t, ValidateTime("24:00"))
	assert.Error(t, ValidateTime("09:60"))
	assert.Error(t, ValidateTime("0900"))
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2025-03-10"))
	assert.Error(t, ValidateDate("2025-3-10"))
	assert.Error(t, ValidateDate("10.03.2025"))
	assert.Error(t, ValidateDate("2025-02-30"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+491701234567", NormalizePhone("+49 170 1234567"))
	assert.Equal(t, "01701234567", NormalizePhone("0170/123-4567"))
	assert.Equal(t, "030555", NormalizePhone("(030) 555"))
	// A plus only counts at the front.
	assert.Equal(t, "030555", NormalizePhone("030+555"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestCreateInputValidate(t *testing.T) {
	valid := CreateInput{PatientName: "Anna Schmidt", Date: "2025-03-11", StartTime: "09:00"}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing name", CreateInput{Date: "2025-03-11", StartTime: "09:00"}},
		{"blank name", CreateInput{PatientName: "   ", Date: "2025-03-11", StartTime: "09:00"}},
		{"missing date", CreateInput{PatientName: "A", StartTime: "09:00"}},
		{"bad date", CreateInput{PatientName: "A", Date: "11.03.2025", StartTime: "09:00"}},
		{"missing time", CreateInput{PatientName: "A", Date: "2025-03-11"}},
		{"bad time", CreateInput{PatientName: "A", Date: "2025-03-11", StartTime: "9am"}},
		{"end before start", CreateInput{PatientName: "A", Date: "2025-03-11", StartTime: "10:00", EndTime: "09:30"}},
		{"end equals start", CreateInput{PatientName: "A", Date: "2025-03-11", StartTime: "10:00", EndTime: "10:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestUpdatePatchValidate(t *testing.T) {
	assert.Error(t, (&UpdatePatch{}).Validate(), "empty patch is rejected")

	start := "10:00"
	assert.NoError(t, (&UpdatePatch{StartTime: &start}).Validate())

	bad := Status("snoozed")
	err := (&UpdatePatch{Status: &bad}).Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	cancelled := StatusCancelled
	assert.NoError(t, (&UpdatePatch{Status: &cancelled}).Validate())
}
