package kernel

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StaffProfile is the company membership of a staff user. It is stored as
// the JSON "details" column of the user row and is absent for candidates.
type StaffProfile struct {
	CompanyID CompanyID `json:"company_id"`
	IsManager bool      `json:"is_manager"`
}

// Value implements driver.Valuer
func (p StaffProfile) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (p *StaffProfile) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = StaffProfile{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("kernel: cannot scan %T into StaffProfile", src)
	}
	if len(raw) == 0 {
		*p = StaffProfile{}
		return nil
	}
	return json.Unmarshal(raw, p)
}
