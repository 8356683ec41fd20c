package beat

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalidBeat = errors.New("invalid beat value")

// Position is a point in the score, in beats since its start.
// The zero value is beat 0. Values are never mutated after construction.
type Position struct {
	r *big.Rat
}

// Length is a distance between two positions, in beats.
type Length struct {
	r *big.Rat
}

func rat(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return r
}

func Zero() Position {
	return Position{}
}

func One() Length {
	return NewLength(1, 1)
}

func Four() Length {
	return NewLength(4, 1)
}

func NewPosition(num, den int64) Position {
	return Position{big.NewRat(num, den)}
}

func NewLength(num, den int64) Length {
	return Length{big.NewRat(num, den)}
}

// PositionFromRat copies r, so later changes to r are not observed.
func PositionFromRat(r *big.Rat) Position {
	return Position{new(big.Rat).Set(r)}
}

func LengthFromRat(r *big.Rat) Length {
	return Length{new(big.Rat).Set(r)}
}

func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok || s == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBeat, s)
	}
	return r, nil
}

// ParsePosition accepts "n/d", integers and exact decimals such as "20.5".
func ParsePosition(s string) (Position, error) {
	r, err := parseRat(s)
	if nil != err {
		return Position{}, err
	}
	return Position{r}, nil
}

func ParseLength(s string) (Length, error) {
	r, err := parseRat(s)
	if nil != err {
		return Length{}, err
	}
	return Length{r}, nil
}

func (p Position) Add(l Length) Position {
	return Position{new(big.Rat).Add(rat(p.r), rat(l.r))}
}

func (p Position) Sub(l Length) Position {
	return Position{new(big.Rat).Sub(rat(p.r), rat(l.r))}
}

// Diff returns p - q.
func (p Position) Diff(q Position) Length {
	return Length{new(big.Rat).Sub(rat(p.r), rat(q.r))}
}

func (p Position) Cmp(q Position) int {
	return rat(p.r).Cmp(rat(q.r))
}

func (p Position) Equal(q Position) bool {
	return p.Cmp(q) == 0
}

func (p Position) Less(q Position) bool {
	return p.Cmp(q) < 0
}

func (p Position) Sign() int {
	return rat(p.r).Sign()
}

// Rat returns a copy of the underlying rational.
func (p Position) Rat() *big.Rat {
	return new(big.Rat).Set(rat(p.r))
}

func (p Position) Float64() float64 {
	f, _ := rat(p.r).Float64()
	return f
}

// Trunc rounds towards zero to a whole beat.
func (p Position) Trunc() Position {
	r := rat(p.r)
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return Position{new(big.Rat).SetInt(q)}
}

// Ceil rounds up to a whole beat.
func (p Position) Ceil() Position {
	t := p.Trunc()
	if t.Less(p) {
		return t.Add(One())
	}
	return t
}

func (p Position) Fract() Length {
	return p.Diff(p.Trunc())
}

func (p Position) IsInteger() bool {
	return rat(p.r).IsInt()
}

func (p Position) String() string {
	return rat(p.r).RatString()
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(rat(p.r).String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	r, err := parseRat(string(text))
	if nil != err {
		return err
	}
	p.r = r
	return nil
}

func (l Length) Add(o Length) Length {
	return Length{new(big.Rat).Add(rat(l.r), rat(o.r))}
}

func (l Length) Sub(o Length) Length {
	return Length{new(big.Rat).Sub(rat(l.r), rat(o.r))}
}

// Quo returns how many times o fits into l, as an exact rational.
func (l Length) Quo(o Length) *big.Rat {
	return new(big.Rat).Quo(rat(l.r), rat(o.r))
}

func (l Length) Mul(n *big.Rat) Length {
	return Length{new(big.Rat).Mul(rat(l.r), n)}
}

// Ceil rounds up to a whole number of beats.
func (l Length) Ceil() Length {
	return Zero().Add(l).Ceil().Diff(Zero())
}

func (l Length) Cmp(o Length) int {
	return rat(l.r).Cmp(rat(o.r))
}

func (l Length) Equal(o Length) bool {
	return l.Cmp(o) == 0
}

func (l Length) Sign() int {
	return rat(l.r).Sign()
}

func (l Length) Rat() *big.Rat {
	return new(big.Rat).Set(rat(l.r))
}

func (l Length) Float64() float64 {
	f, _ := rat(l.r).Float64()
	return f
}

func (l Length) String() string {
	return rat(l.r).RatString()
}

func (l Length) MarshalText() ([]byte, error) {
	return []byte(rat(l.r).String()), nil
}

func (l *Length) UnmarshalText(text []byte) error {
	r, err := parseRat(string(text))
	if nil != err {
		return err
	}
	l.r = r
	return nil
}

// Format renders a position as its whole beat plus the remaining fraction,
// e.g. "12+1/4". Whole positions render without a fraction.
func Format(p Position) string {
	fract := p.Fract()
	if fract.Sign() == 0 {
		return p.Trunc().String()
	}
	return p.Trunc().String() + "+" + fract.String()
}
