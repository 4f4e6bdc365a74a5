package valuation

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/models"
)

// reconcileTolerance is the relative band inside which the FCFF/WACC and
// FCFE/Ke equity values are reported as reconciled. Divergence beyond it is
// commentary, not an error: the two legs legitimately drift apart when the
// capital structure moves over the forecast.
const reconcileTolerance = 0.01

// BuildBridge assembles the valuation bridge: EV from the FCFF leg, equity
// via the base-year net financial position, and the direct FCFE equity value
// alongside for reconciliation.
func BuildBridge(
	sumPVFCFF, sumPVFCFE float64,
	tv models.TerminalValue,
	debtAtBase, cashAtBase float64,
) models.Bridge {
	ev := sumPVFCFF + tv.PVFCFF
	netDebt := debtAtBase - cashAtBase
	equityFromEV := ev - netDebt
	equityDirect := sumPVFCFE + tv.PVFCFE

	b := models.Bridge{
		SumPVFCFF:       sumPVFCFF,
		SumPVFCFE:       sumPVFCFE,
		PVTerminalFCFF:  tv.PVFCFF,
		PVTerminalFCFE:  tv.PVFCFE,
		EnterpriseValue: ev,
		DebtAtBase:      debtAtBase,
		CashAtBase:      cashAtBase,
		NetDebt:         netDebt,
		EquityValue:     equityFromEV,
		EquityValueFCFE: equityDirect,
	}

	b.ReconciliationDifference = equityFromEV - equityDirect
	pct := 0.0
	if equityFromEV != 0 {
		pct = math.Abs(b.ReconciliationDifference/equityFromEV) * 100
	}
	if pct < reconcileTolerance*100 {
		b.ReconciliationNotes = []string{
			fmt.Sprintf("FCFF and FCFE approaches reconcile within %.1f%%.", reconcileTolerance*100),
		}
	} else {
		b.ReconciliationNotes = []string{
			fmt.Sprintf("Difference of %.2f (%.2f%%) between FCFF/WACC and FCFE/Ke approaches.", b.ReconciliationDifference, pct),
			"Typical sources: interest tax shield treatment, weighting assumptions, terminal discount rate (WACC vs Ke), net borrowing timing.",
		}
	}
	return b
}
