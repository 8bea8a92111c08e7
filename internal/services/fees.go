package services

import (
	"fmt"

	"github.com/localpros/backend/internal/config"
)

// FeeCalculator derives every customer-facing and provider-facing money amount
// from the platform configuration captured at startup. All methods are pure,
// all amounts are integer cents, and every bps computation rounds half-up
// through the same helper so results are reproducible bit for bit.
type FeeCalculator struct {
	cfg *config.PlatformConfig
}

func NewFeeCalculator(cfg *config.PlatformConfig) *FeeCalculator {
	return &FeeCalculator{cfg: cfg}
}

// roundHalfUpBps computes amount*bps/10000 rounded half-up to the nearest cent.
func roundHalfUpBps(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*bps + 5000) / 10000
}

// CustomerFee returns the surcharge charged to the customer on top of the
// service price. Small amounts pay a flat fee, mid-range amounts a larger flat
// fee, and everything at or above the mid threshold a percentage clamped to
// the configured band.
func (f *FeeCalculator) CustomerFee(baseAmount int64) int64 {
	switch {
	case baseAmount < f.cfg.CustomerFeeLowThreshold:
		return f.cfg.CustomerFeeSmallFlat
	case baseAmount < f.cfg.CustomerFeeMidThreshold:
		return f.cfg.CustomerFeeLargeFlat
	}

	fee := roundHalfUpBps(baseAmount, f.cfg.CustomerFeePctBps)
	if fee < f.cfg.CustomerFeeMin {
		fee = f.cfg.CustomerFeeMin
	}
	if fee > f.cfg.CustomerFeeMax {
		fee = f.cfg.CustomerFeeMax
	}
	return fee
}

// PlatformFee returns the marketplace commission on amount at the given tier
// rate.
func (f *FeeCalculator) PlatformFee(amount, tierBps int64) int64 {
	return roundHalfUpBps(amount, tierBps)
}

// Tax returns the GST owed on amount. Providers that are not GST-registered
// owe nothing.
func (f *FeeCalculator) Tax(amount int64, taxRegistered bool, taxBps int64) int64 {
	if !taxRegistered {
		return 0
	}
	return roundHalfUpBps(amount, taxBps)
}

// Net returns gross minus the platform fee. Tax is a pass-through recorded on
// the earnings row and is not subtracted here. A negative net means the fee
// configuration is broken; it is returned alongside the error so callers can
// report the real numbers instead of clamping them away.
func (f *FeeCalculator) Net(gross, platformFee int64) (int64, error) {
	net := gross - platformFee
	if net < 0 {
		return net, fmt.Errorf("net amount is negative: gross %d, platform fee %d", gross, platformFee)
	}
	return net, nil
}

// RemainderPlatformFee returns the commission share owed on the remainder
// installment of a deposit-then-remainder payment, so the two installments
// together pay exactly the fee computed on the full total. Never negative,
// even when the deposit over-collected.
func (f *FeeCalculator) RemainderPlatformFee(totalExpectedFee, collectedOnDeposit int64) int64 {
	remainder := totalExpectedFee - collectedOnDeposit
	if remainder < 0 {
		return 0
	}
	return remainder
}
