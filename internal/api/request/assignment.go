package request

import "time"

type CreateAssignment struct {
	ReportID         *string    `json:"report_id" validate:"omitempty,uuid4"`
	OfficerID        string     `json:"officer_id" validate:"required,uuid4"`
	InspectionFormID string     `json:"inspection_form_id" validate:"required,uuid4"`
	IsPersistent     bool       `json:"is_persistent"`
	Notes            string     `json:"notes"`
	DueDate          *time.Time `json:"due_date"`
}

type EscalateAssignment struct {
	Level  string `json:"level" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type ReassignAssignment struct {
	OfficerID string `json:"officer_id" validate:"required"`
}
