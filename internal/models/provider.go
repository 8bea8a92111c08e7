package models

import "time"

// Provider subscription tiers, commission decreases as the tier rises
const (
	TierStarter  = "starter"
	TierStandard = "standard"
	TierPro      = "pro"
	TierElite    = "elite"
)

// Provider represents the slice of a provider profile this core reads.
// The profile surface owns these rows; tier, GST registration and KYC status
// are only ever consulted here, never written.
type Provider struct {
	ID               string    `json:"id" db:"id"`
	DisplayName      string    `json:"display_name" db:"display_name"`
	Tier             string    `json:"tier" db:"tier"`
	TaxRegistered    bool      `json:"tax_registered" db:"tax_registered"`
	KYCVerified      bool      `json:"kyc_verified" db:"kyc_verified"`
	PayoutAccountRef string    `json:"payout_account_ref" db:"payout_account_ref"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
