package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
)

func TestDonationsXLSX(t *testing.T) {
	at := time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
	rows := []repository.DonationDetail{{
		Donation: model.Donation{
			ID:             31,
			BloodRequestID: 9,
			DonationDate:   at,
			Quantity:       1,
			Status:         model.DonationPending,
			CreatedAt:      at.Add(-24 * time.Hour),
		},
		BloodType:    model.BloodOPos,
		Urgency:      model.UrgencyHigh,
		HospitalName: "City Medical Center",
		DonorName:    "John Smith",
		DonorEmail:   "donor1@email.com",
	}}

	data, err := DonationsXLSX(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DonationSheet}, f.GetSheetList())
	got, err := f.GetRows(DonationSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, DonationHeader, got[0])
	assert.Equal(t, []string{"31", "John Smith", "donor1@email.com", "City Medical Center", "9", "O+", "High", "1", "Pending", "2025-03-11 09:30:00", "2025-03-10 09:30:00"}, got[1])
}

func TestDonationsXLSX_Empty(t *testing.T) {
	data, err := DonationsXLSX(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows(DonationSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
