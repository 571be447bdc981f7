// Package channel provides the packet-loss models used by the simulator to
// decide, transmission by transmission, whether an encoded symbol reaches
// the decoder.
//
// Overview
//
//   - Model interface:
//     Reset()
//     Poll() bool
//     Kind() Kind
//
//     Poll is called exactly once per transmission opportunity, in order,
//     and reports true when the symbol is delivered. Reset puts the model
//     back into its canonical initial state and is called at the start of
//     every block, so that successive blocks are independent trials rather
//     than one long chain.
//
//   - Variants:
//
//   - NoLoss: every symbol is delivered (error-free baseline).
//
//   - IID(p): each symbol is dropped independently with probability p,
//     0 <= p < 1.
//
//   - Markov(pGB, pBG): two-state Gilbert-Elliott chain. Every poll first
//     moves the chain (Good->Bad with pGB, Bad->Good with pBG) and then
//     drops the symbol iff the chain is Bad. The chain starts Good after
//     every Reset. 0 < pGB, pBG <= 1.
//
//   - Selection (New):
//     a non-zero Config.IIDPer selects IID; otherwise a non-zero
//     Config.MarkovPGB selects Markov (pGB == 0 is the degenerate
//     always-good chain); otherwise NoLoss.
//
//   - Burst parametrisation:
//     MarkovFromBurst converts an average loss rate and an average bad-run
//     length into (pGB, pBG): pBG = 1/badRun, pGB = pBG*per/(1-per).
//
//   - Errors (errs.go):
//     ErrInvalidParameters : probabilities out of range
//
// Models own their *rand.Rand and are not safe for concurrent use. Parallel
// workers construct their own model from a copied Config and their own seed.
package channel
