package orders

import "encoding/json"

type CreateOrderRequest struct {
	Reference    string      `json:"reference" validate:"required,max=100"`
	CustomerName *string     `json:"customer_name"`
	Lines        []LineInput `json:"products" validate:"dive"`
}

// UpdateOrderRequest patches scalar fields (nil = untouched) and carries a
// three-state line set: field absent = lines untouched, [] = clear all
// lines, populated = full replace.
type UpdateOrderRequest struct {
	Reference    *string    `json:"reference" validate:"omitempty,max=100"`
	CustomerName *string    `json:"customer_name"`
	Status       *string    `json:"status" validate:"omitempty,oneof=open fulfilled cancelled"`
	Lines        LinesPatch `json:"products" validate:"omitempty"`
}

// LinesPatch distinguishes "field absent" from "empty list". When the JSON
// key is missing, UnmarshalJSON is never called and Set stays false; an
// explicit null is treated the same as absent.
type LinesPatch struct {
	Set   bool        `json:"-"`
	Lines []LineInput `json:"-" validate:"dive"`
}

func (p *LinesPatch) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &p.Lines); err != nil {
		return err
	}
	p.Set = true
	return nil
}

func (p LinesPatch) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Lines)
}
