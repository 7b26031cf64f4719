package lattice

import "fmt"

// LatticeError reports a broken lattice invariant. It is always a defect in
// the caller or in this package, never a recoverable condition: a corrupted
// invariant silently poisons every downstream result, so the operators fail
// fast instead.
type LatticeError struct {
	msg string
}

func (e *LatticeError) Error() string {
	return e.msg
}

func NewLatticeError(msg string) *LatticeError {
	return &LatticeError{msg: msg}
}

func assert(pred bool, msg ...string) {
	if !pred {
		m := ""
		if len(msg) > 0 {
			m = msg[0]
		}
		panic(NewLatticeError(m))
	}
}

func assertf(pred bool, format string, a ...any) {
	if !pred {
		panic(NewLatticeError(fmt.Sprintf(format, a...)))
	}
}
