package models

import "time"

const (
	ActionStudentCreated   = "student_created"
	ActionStudentDeleted   = "student_deleted"
	ActionStudentUpdated   = "student_updated"
	ActionFeeIssued        = "fee_issued"
	ActionFeeRetracted     = "fee_retracted"
	ActionFeeAmountUpdated = "fee_amount_updated"
	ActionFeeMarkedPaid    = "fee_marked_paid"

	TargetStudent    = "student"
	TargetMonthlyFee = "monthly_fee"
)

type AdminActionLog struct {
	ID          int       `json:"id"`
	AdminID     int       `json:"admin_id"`
	AdminName   string    `json:"admin_name,omitempty"`
	ActionType  string    `json:"action_type"`
	TargetType  string    `json:"target_type"`
	TargetID    *int      `json:"target_id,omitempty"`
	Description string    `json:"description"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
