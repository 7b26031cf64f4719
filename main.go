package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tyflow/pkg/lattice"
	"tyflow/pkg/types"

	"github.com/urfave/cli/v3"
)

var version = "0.0.1"

func main() {
	defer func() {
		if r := recover(); r != nil {
			var latErr *lattice.LatticeError
			if err, ok := r.(error); ok && errors.As(err, &latErr) {
				_, _ = fmt.Fprintln(os.Stderr, latErr.Error())
				os.Exit(1)
			}
			panic(r)
		}
	}()
	cmd := &cli.Command{
		Name:    "tyflow",
		Usage:   "inspect abstract-value lattice operators",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "order",
				Aliases:   []string{"o"},
				Usage:     "compare two abstract values",
				ArgsUsage: "A B",
				Action:    orderAction,
			},
			{
				Name:      "meet",
				Aliases:   []string{"m"},
				Usage:     "intersect an abstract value with a type constraint",
				ArgsUsage: "V T",
				Action:    meetAction,
			},
			{
				Name:      "widen",
				Aliases:   []string{"w"},
				Usage:     "apply the widening family to an abstract value",
				ArgsUsage: "V",
				Action:    widenAction,
			},
			{
				Name:   "version",
				Usage:  "print tyflow version",
				Action: versionAction,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func orderAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return errors.New("order wants two values")
	}
	a, err := ParseValue(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	b, err := ParseValue(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Printf("%s ⊑ %s: %t\n", a, b, lattice.Leq(a, b))
	fmt.Printf("%s ⊑ %s: %t\n", b, a, lattice.Leq(b, a))
	fmt.Printf("equal: %t\n", lattice.LatticeEq(a, b))
	return nil
}

func meetAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return errors.New("meet wants a value and a type")
	}
	v, err := ParseValue(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	t, err := ParseType(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(lattice.TMeet(v, t))
	return nil
}

func widenAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("widen wants one value")
	}
	v, err := ParseValue(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	fmt.Printf("conditional: %s\n", lattice.WidenConditional(v))
	fmt.Printf("mustalias:   %s\n", lattice.WidenMustAlias(v))
	fmt.Printf("slotwrapper: %s\n", lattice.WidenSlotWrapper(v))
	fmt.Printf("const:       %s\n", lattice.WidenConst(lattice.IgnoreLimited(lattice.WidenSlotWrapper(v))))
	return nil
}

func versionAction(_ context.Context, _ *cli.Command) error {
	fmt.Println(version)
	return nil
}

// reader is a cursor over one operand expression.
type reader struct {
	src string
	pos int
}

func (r *reader) ws() {
	for r.pos < len(r.src) && r.src[r.pos] == ' ' {
		r.pos++
	}
}

func (r *reader) peek() byte {
	r.ws()
	if r.pos >= len(r.src) {
		return 0
	}
	return r.src[r.pos]
}

func (r *reader) eat(c byte) error {
	if r.peek() != c {
		return fmt.Errorf("want %q at offset %d of %q", c, r.pos, r.src)
	}
	r.pos++
	return nil
}

func (r *reader) ident() string {
	r.ws()
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			r.pos++
			continue
		}
		break
	}
	return r.src[start:r.pos]
}

func (r *reader) number() (string, error) {
	r.ws()
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+' {
			r.pos++
			continue
		}
		break
	}
	if start == r.pos {
		return "", fmt.Errorf("want a number at offset %d of %q", start, r.src)
	}
	return r.src[start:r.pos], nil
}

func (r *reader) int() (int, error) {
	s, err := r.number()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// ParseValue reads a lattice value in the textual form the String methods
// print: Const(5), Conditional(2, Int, F64), Tuple{Int,Any}, Limited(Int, 1, 2)...
func ParseValue(s string) (lattice.Value, error) {
	r := &reader{src: s}
	v, err := r.value()
	if err != nil {
		return nil, err
	}
	if r.peek() != 0 {
		return nil, fmt.Errorf("trailing input at offset %d of %q", r.pos, s)
	}
	return v, nil
}

// ParseType reads a plain type.
func ParseType(s string) (types.Type, error) {
	r := &reader{src: s}
	t, err := r.typ()
	if err != nil {
		return nil, err
	}
	if r.peek() != 0 {
		return nil, fmt.Errorf("trailing input at offset %d of %q", r.pos, s)
	}
	return t, nil
}

func (r *reader) value() (lattice.Value, error) {
	save := r.pos
	name := r.ident()
	switch name {
	case "Const":
		if err := r.eat('('); err != nil {
			return nil, err
		}
		val, err := r.literal()
		if err != nil {
			return nil, err
		}
		return lattice.Const{Val: val}, r.eat(')')
	case "PartialStruct":
		if err := r.eat('('); err != nil {
			return nil, err
		}
		base, err := r.typ()
		if err != nil {
			return nil, err
		}
		var fields []lattice.Value
		for r.peek() == ',' {
			_ = r.eat(',')
			f, err := r.value()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		if err := r.eat(')'); err != nil {
			return nil, err
		}
		return lattice.NewPartialStruct(base, fields), nil
	case "Conditional", "InterConditional":
		if err := r.eat('('); err != nil {
			return nil, err
		}
		slot, err := r.int()
		if err != nil {
			return nil, err
		}
		if err := r.eat(','); err != nil {
			return nil, err
		}
		ifTrue, err := r.typ()
		if err != nil {
			return nil, err
		}
		if err := r.eat(','); err != nil {
			return nil, err
		}
		ifFalse, err := r.typ()
		if err != nil {
			return nil, err
		}
		if err := r.eat(')'); err != nil {
			return nil, err
		}
		if name == "InterConditional" {
			return lattice.NewInterConditional(slot, ifTrue, ifFalse), nil
		}
		return lattice.NewConditional(slot, ifTrue, ifFalse), nil
	case "Limited":
		if err := r.eat('('); err != nil {
			return nil, err
		}
		inner, err := r.value()
		if err != nil {
			return nil, err
		}
		var ids []uint64
		for r.peek() == ',' {
			_ = r.eat(',')
			id, err := r.int()
			if err != nil {
				return nil, err
			}
			ids = append(ids, uint64(id))
		}
		if err := r.eat(')'); err != nil {
			return nil, err
		}
		return lattice.NewLimited(inner, lattice.Causes(ids...)), nil
	case "MaybeUndef":
		if err := r.eat('('); err != nil {
			return nil, err
		}
		inner, err := r.value()
		if err != nil {
			return nil, err
		}
		return lattice.MaybeUndef{V: inner}, r.eat(')')
	}
	r.pos = save
	t, err := r.typ()
	if err != nil {
		return nil, err
	}
	return lattice.Ty{T: t}, nil
}

func (r *reader) literal() (types.Val, error) {
	switch c := r.peek(); {
	case c == '"':
		_ = r.eat('"')
		end := strings.IndexByte(r.src[r.pos:], '"')
		if end < 0 {
			return nil, fmt.Errorf("unterminated string in %q", r.src)
		}
		v := r.src[r.pos : r.pos+end]
		r.pos += end + 1
		return types.StringVal{V: v}, nil
	case c >= '0' && c <= '9' || c == '-':
		s, err := r.number()
		if err != nil {
			return nil, err
		}
		if strings.ContainsRune(s, '.') {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			return types.F64Val{V: f}, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return types.IntVal{V: n}, nil
	}
	save := r.pos
	switch r.ident() {
	case "true":
		return types.BoolVal{V: true}, nil
	case "false":
		return types.BoolVal{V: false}, nil
	case "void":
		return types.VoidVal{}, nil
	}
	r.pos = save
	t, err := r.typ()
	if err != nil {
		return nil, err
	}
	return types.TypeVal{T: t}, nil
}

func (r *reader) typ() (types.Type, error) {
	name := r.ident()
	switch name {
	case "Any":
		return types.Any, nil
	case "Bottom":
		return types.Bottom, nil
	case "Void":
		return types.Void, nil
	case "Bool":
		return types.Bool, nil
	case "Int":
		return types.Int, nil
	case "Uint":
		return types.Uint, nil
	case "F64":
		return types.F64, nil
	case "String":
		return types.Str, nil
	case "Integer":
		return types.Integer, nil
	case "Number":
		return types.Number, nil
	case "Tuple", "Union":
		elts, err := r.typList()
		if err != nil {
			return nil, err
		}
		if name == "Union" {
			return types.UnionType{Elts: elts}, nil
		}
		return types.TupleType{Elts: elts}, nil
	case "Type":
		if err := r.eat('{'); err != nil {
			return nil, err
		}
		w, err := r.typ()
		if err != nil {
			return nil, err
		}
		return types.TypeType{W: w}, r.eat('}')
	}
	return nil, fmt.Errorf("unknown type %q in %q", name, r.src)
}

func (r *reader) typList() ([]types.Type, error) {
	if err := r.eat('{'); err != nil {
		return nil, err
	}
	var elts []types.Type
	if r.peek() != '}' {
		for {
			t, err := r.typ()
			if err != nil {
				return nil, err
			}
			if r.peek() == '.' {
				for i := 0; i < 3; i++ {
					if err := r.eat('.'); err != nil {
						return nil, err
					}
				}
				t = types.EllipsisType{Elt: t}
			}
			elts = append(elts, t)
			if r.peek() != ',' {
				break
			}
			_ = r.eat(',')
		}
	}
	if err := r.eat('}'); err != nil {
		return nil, err
	}
	return elts, nil
}
