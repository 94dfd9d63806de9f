package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mess-backend/internal/models"
	"mess-backend/internal/timeutil"
)

func testReceipt() *models.Receipt {
	return &models.Receipt{
		Student: models.Student{
			FullName:         "Ravi  Kumar Singh",
			RoomNumber:       101,
			EnrollmentNumber: "210012345",
			Branch:           "CSE",
		},
		Period:        models.FeePeriod{Month: time.February, Year: 2024},
		Amount:        decimal.RequireFromString("1500.50"),
		ReceiptNumber: 12,
		PaymentMethod: models.PaymentOnline,
		PaidAt:        time.Date(2024, time.February, 3, 14, 5, 0, 0, timeutil.IST),
	}
}

func TestReceiptFilename(t *testing.T) {
	assert.Equal(t, "receipt_Ravi_Kumar_Singh_February_2024.pdf", ReceiptFilename(testReceipt()))
}

func TestRenderPDF(t *testing.T) {
	s := &ReceiptService{
		contractor: "Mess Contractor",
		hostel:     "Hostel A",
		location:   "Campus",
		signatory:  "Warden",
	}

	data, err := s.RenderPDF(testReceipt())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 500)
}
