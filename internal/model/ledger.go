package model

import "time"

// Entity is an organization that owns ledgers. OwnerID is the caller id of
// the user that created it.
type Entity struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Country       string         `json:"country,omitempty"`
	Address1      string         `json:"address_1,omitempty"`
	Address2      string         `json:"address_2,omitempty"`
	City          string         `json:"city,omitempty"`
	State         string         `json:"state,omitempty"`
	ZipCode       string         `json:"zip_code,omitempty"`
	Website       string         `json:"website,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Hidden        bool           `json:"hidden"`
	FYStartMonth  int            `json:"fy_start_month"`
	AccrualMethod bool           `json:"accrual_method"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Ledger is an independent bookkeeping context inside an entity.
type Ledger struct {
	ID        string         `json:"id"`
	EntityID  string         `json:"entity_id"`
	Name      string         `json:"name"`
	Posted    bool           `json:"posted"`
	Locked    bool           `json:"locked"`
	Hidden    bool           `json:"hidden"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
