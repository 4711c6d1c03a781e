package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction is the signed effect a transaction kind has on an account
// balance. Transfer kinds take their sign from the allocation's
// source/destination flags instead.
type Direction int

const (
	Outflow  Direction = -1
	Transfer Direction = 0
	Inflow   Direction = 1
)

// KindRegistry maps every recognized transaction kind to its balance
// direction. Kinds absent from the registry are rejected at validation;
// there is no substring or default-sign fallback.
type KindRegistry map[TransactionKind]Direction

// DefaultKinds returns the registry covering the built-in kind enumeration.
func DefaultKinds() KindRegistry {
	return KindRegistry{
		KindSale:                  Inflow,
		KindRefund:                Inflow,
		KindLoanDisbursement:      Inflow,
		KindInvestmentInflow:      Inflow,
		KindCommission:            Inflow,
		KindGrantReceipt:          Inflow,
		KindNGOGrantReceipt:       Inflow,
		KindReimbursement:         Inflow,
		KindCreditSale:            Inflow,
		KindInstallmentPayment:    Inflow,
		KindTransfer:              Transfer,
		KindPurchase:              Outflow,
		KindExpense:               Outflow,
		KindLoanRepayment:         Outflow,
		KindSubscriptionPayment:   Outflow,
		KindInvestmentOutflow:     Outflow,
		KindTaxPayment:            Outflow,
		KindSalaryPayment:         Outflow,
		KindDonation:              Outflow,
		KindUtilityPayment:        Outflow,
		KindMaintenanceExpense:    Outflow,
		KindInsurancePayment:      Outflow,
		KindPenaltyOrFine:         Outflow,
		KindDepreciation:          Outflow,
		KindRawMaterialPurchase:   Outflow,
		KindPackagingPurchase:     Outflow,
		KindToolPurchase:          Outflow,
		KindWorkshopRent:          Outflow,
		KindStoreRent:             Outflow,
		KindMarketFees:            Outflow,
		KindInventoryRestock:      Outflow,
		KindStorageExpense:        Outflow,
		KindTransportationExpense: Outflow,
		KindEquipmentPurchase:     Outflow,
		KindEquipmentMaintenance:  Outflow,
		KindBusinessSupplies:      Outflow,
		KindStaffBonus:            Outflow,
		KindTrainingExpense:       Outflow,
		KindProductReturn:         Outflow,
	}
}

// WithKind returns a copy of the registry extended with one kind. The
// receiver is not modified, so shared registries stay race-free.
func (r KindRegistry) WithKind(kind TransactionKind, dir Direction) KindRegistry {
	out := make(KindRegistry, len(r)+1)
	for k, d := range r {
		out[k] = d
	}
	out[kind] = dir
	return out
}

// Recognizes reports whether the kind has a registered direction.
func (r KindRegistry) Recognizes(kind TransactionKind) bool {
	_, ok := r[kind]
	return ok
}

// BalanceChange computes the signed delta an allocation applies to its
// account. For TRANSFER the flags decide: source decreases, destination
// increases, an unflagged allocation contributes nothing.
func (r KindRegistry) BalanceChange(kind TransactionKind, alloc AccountAllocation) (decimal.Decimal, error) {
	dir, ok := r[kind]
	if !ok {
		return decimal.Zero, &ValidationError{Reason: fmt.Sprintf("unrecognized transaction kind %q", kind)}
	}

	switch dir {
	case Inflow:
		return alloc.Amount, nil
	case Outflow:
		return alloc.Amount.Neg(), nil
	default:
		if alloc.IsTransferSource {
			return alloc.Amount.Neg(), nil
		}
		if alloc.IsTransferDestination {
			return alloc.Amount, nil
		}
		return decimal.Zero, nil
	}
}
