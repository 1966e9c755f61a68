package sandwich

import (
	"math/big"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// VictimLoss is a diagnostic-only estimate of how much worse a victim's
// swap performed than it would have without the frontrun, derived from
// the constant-product invariant implied by the frontrun and the
// combined frontrun+victim fill. It never feeds back into detection.
type VictimLoss struct {
	Victim  svmtypes.Swap
	LossIn  *big.Int // extra input the victim effectively spent
	LossOut *big.Int // output the victim fell short of receiving
}

// EstimateVictimLoss recovers the pool's pre-frontrun reserves (a, b)
// by treating the frontrun fill and the frontrun+victim combined fill
// as two points on the same constant-product curve x*y=k, solving the
// resulting 2x2 linear system via Cramer's rule, then re-deriving the
// reserves the victim would have traded against had the frontrun not
// moved them first. All arithmetic runs over math/big so nothing
// overflows the way it would in fixed-width 128-bit integers, and
// every division truncates toward zero to match integer division
// semantics exactly. ok is false when the system is degenerate (the
// frontrun and victim trades don't pin down a consistent curve) and
// no estimate can be made.
func EstimateVictimLoss(frontrun, victim svmtypes.Swap) (VictimLoss, bool) {
	a1 := new(big.Int).SetUint64(frontrun.InputAmount)
	b1 := new(big.Int).SetUint64(frontrun.OutputAmount)
	a2 := new(big.Int).SetUint64(victim.InputAmount)
	b2 := new(big.Int).SetUint64(victim.OutputAmount)

	a3 := new(big.Int).Add(a1, a2)
	b3 := new(big.Int).Add(b1, b2)
	c1 := new(big.Int).Neg(new(big.Int).Mul(a1, b1))
	c2 := new(big.Int).Neg(new(big.Int).Mul(a3, b3))

	// | b1  -a1 | |a|   |c1|
	// | b3  -a3 | |b| = |c2|
	det := new(big.Int).Sub(new(big.Int).Mul(a1, b3), new(big.Int).Mul(b1, a3))
	if det.Sign() == 0 {
		return VictimLoss{}, false
	}
	detA := new(big.Int).Sub(new(big.Int).Mul(a1, c2), new(big.Int).Mul(c1, a3))
	detB := new(big.Int).Sub(new(big.Int).Mul(b1, c2), new(big.Int).Mul(b3, c1))

	a := new(big.Int).Quo(detA, det)
	b := new(big.Int).Quo(detB, det)
	k := new(big.Int).Mul(a, b)

	denom1 := new(big.Int).Add(a, a2)
	if denom1.Sign() == 0 {
		return VictimLoss{}, false
	}
	b2p := new(big.Int).Sub(b, new(big.Int).Quo(k, denom1))

	denom2 := new(big.Int).Sub(b, b2)
	if denom2.Sign() == 0 {
		return VictimLoss{}, false
	}
	a2p := new(big.Int).Sub(a, new(big.Int).Quo(k, denom2))

	return VictimLoss{
		Victim:  victim,
		LossIn:  new(big.Int).Sub(a2, a2p),
		LossOut: new(big.Int).Sub(b2p, b2),
	}, true
}
