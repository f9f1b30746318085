// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chudnovsky computes decimal digits of pi to arbitrary precision.
//
// # Description
//
// Implements the Chudnovsky series with binary splitting, the same scheme
// used by record-setting pi computations. The series converges at roughly
// 14.18 decimal digits per term; binary splitting evaluates it as exact
// big-integer products and sums, avoiding high-precision floating point
// entirely. A fixed guard margin of extra digits absorbs the truncation
// error of the final division and square root, so every digit returned is
// exact and never retracted as precision grows.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package chudnovsky

import (
	"math"
	"math/big"
)

// Chudnovsky series constants.
//
//	1/pi = 12 * sum_{k>=0} (-1)^k (6k)! (A + B*k) / ((3k)! (k!)^3 C^(3k+3/2))
const (
	seriesA  = 13591409
	seriesB  = 545140134
	c3Over24 = 10939058860032000 // 640320^3 / 24
)

// digitsPerTerm is the number of correct decimal digits gained per
// series term.
const digitsPerTerm = 14.1816474

// guardDigits is the extra precision carried beyond the requested digits.
// It absorbs truncation error from the final integer division and square
// root. Chosen empirically; do not reduce it.
const guardDigits = 20

var (
	bigOne    = big.NewInt(1)
	bigA      = big.NewInt(seriesA)
	bigB      = big.NewInt(seriesB)
	bigC3o24  = big.NewInt(c3Over24)
	big10005  = big.NewInt(10005)
	big426880 = big.NewInt(426880)
	bigTen    = big.NewInt(10)
)

// triple holds the binary-splitting state (P, Q, T) for a half-open term
// range [a, b). Triples combine associatively: the triple for [a, b)
// depends only on the endpoints, never on the split point.
type triple struct {
	p, q, t *big.Int
}

// baseTerm computes the triple for the single term [a, a+1).
func baseTerm(a uint64) triple {
	if a == 0 {
		return triple{
			p: new(big.Int).Set(bigOne),
			q: new(big.Int).Set(bigOne),
			t: new(big.Int).Set(bigA),
		}
	}

	aBig := new(big.Int).SetUint64(a)

	// P(a) = (6a-5)(2a-1)(6a-1)
	p := new(big.Int).SetUint64(6*a - 5)
	p.Mul(p, new(big.Int).SetUint64(2*a-1))
	p.Mul(p, new(big.Int).SetUint64(6*a-1))

	// Q(a) = a^3 * C^3/24
	q := new(big.Int).Mul(aBig, aBig)
	q.Mul(q, aBig)
	q.Mul(q, bigC3o24)

	// T(a) = (A + B*a) * P(a), negated for odd a (alternating series).
	t := new(big.Int).Mul(bigB, aBig)
	t.Add(t, bigA)
	t.Mul(t, p)
	if a%2 == 1 {
		t.Neg(t)
	}

	return triple{p: p, q: q, t: t}
}

// combine merges the triples for adjacent ranges [a, m) and [m, b) into
// the exact triple for [a, b).
func combine(left, right triple) triple {
	p := new(big.Int).Mul(left.p, right.p)
	q := new(big.Int).Mul(left.q, right.q)

	// T = Qr*Tl + Pl*Tr
	t := new(big.Int).Mul(right.q, left.t)
	t.Add(t, new(big.Int).Mul(left.p, right.t))

	return triple{p: p, q: q, t: t}
}

// split evaluates the series over the term range [a, b) by recursive
// halving down to single-term base cases.
func split(a, b uint64) triple {
	if b-a == 1 {
		return baseTerm(a)
	}
	m := (a + b) / 2
	return combine(split(a, m), split(m, b))
}

// integerSqrt returns the largest integer whose square does not exceed n.
//
// # Description
//
// Newton's method on integers, seeded with 2^ceil((bitlen(n)+1)/2) so the
// first iterate already overshoots the root from above. Iteration is
// monotonically decreasing until it crosses the fixed point; the loop
// stops at the first iterate that fails to shrink.
//
// # Inputs
//
//   - n: Non-negative integer. Negative input panics (caller bug).
//
// # Outputs
//
//   - *big.Int: floor(sqrt(n)). Never nil.
func integerSqrt(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("chudnovsky: integerSqrt of negative number")
	}
	if n.Sign() == 0 {
		return new(big.Int)
	}

	x := new(big.Int).Lsh(bigOne, uint(n.BitLen()+1)/2)
	for {
		// next = (x + n/x) / 2
		next := new(big.Int).Quo(n, x)
		next.Add(next, x)
		next.Rsh(next, 1)
		if next.Cmp(x) >= 0 {
			return x
		}
		x = next
	}
}

// termsFor returns the number of series terms required to produce n
// digits plus the guard margin.
func termsFor(n int) uint64 {
	total := float64(n + guardDigits)
	return uint64(math.Ceil(total/digitsPerTerm)) + 2
}

// Digits returns the first n decimal digits of pi after the leading "3",
// as values 0-9.
//
// # Description
//
// Evaluates the Chudnovsky series with binary splitting at a precision of
// n plus the guard margin, then extracts digits from the resulting scaled
// integer:
//
//	pi * 10^total = Q * 426880 * sqrt(10005 * 10^(2*total)) / T
//
// The result is deterministic and prefix-stable: for any n2 >= n1, the
// first n1 digits of Digits(n2) equal Digits(n1) exactly.
//
// # Inputs
//
//   - n: Number of digits requested. n <= 0 returns an empty slice
//     without computing anything.
//
// # Outputs
//
//   - []byte: n digit values in 0..9.
func Digits(n int) []byte {
	if n <= 0 {
		return nil
	}

	total := n + guardDigits
	terms := termsFor(n)

	st := split(0, terms)

	// sqrt(10005 * 10^(2*total))
	scale := new(big.Int).Exp(bigTen, big.NewInt(int64(2*total)), nil)
	scale.Mul(scale, big10005)
	sqrtC := integerSqrt(scale)

	// piScaled = Q * 426880 * sqrtC / T
	piScaled := new(big.Int).Mul(st.q, big426880)
	piScaled.Mul(piScaled, sqrtC)
	piScaled.Quo(piScaled, st.t)

	s := piScaled.String()

	// s is "3" followed by the fractional expansion. The guard margin
	// ensures at least n exact digits follow the leading 3.
	digits := make([]byte, n)
	for i := 0; i < n; i++ {
		digits[i] = s[i+1] - '0'
	}
	return digits
}
