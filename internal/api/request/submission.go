package request

import "encoding/json"

type CreateSubmission struct {
	Data      json.RawMessage `json:"data" validate:"required"`
	Latitude  *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64        `json:"longitude" validate:"omitempty,longitude"`
	IsDraft   bool            `json:"is_draft"`
}
