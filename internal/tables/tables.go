package tables

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"smartassembly/internal/store"
)

type Kind int

const (
	KindUint256 Kind = iota
	KindUint
	KindBool
	KindText
)

var kindNames = [...]string{"uint256", "uint", "bool", "text"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Column struct {
	Name string
	Kind Kind
}

// Def is the type-erased view of a table used by the storage backends.
// The first column is always the key.
type Def interface {
	Name() string
	SQLName() string
	Columns() []Column
	Decode(row []sql.NullString) (store.Ref, any, error)
}

type Table[R any] struct {
	name    string
	sqlName string
	columns []Column
	decode  func(r *rowReader) (string, R)
}

var _ Def = (*Table[Inventory])(nil)

func (t *Table[R]) Name() string      { return t.name }
func (t *Table[R]) SQLName() string   { return t.sqlName }
func (t *Table[R]) Columns() []Column { return t.columns }

func (t *Table[R]) Ref(key string) store.Ref {
	return store.Ref{Table: t.name, Key: key}
}

// Get reads the record stored under key. A missing record, or a value of the
// wrong type, reads as absent.
func (t *Table[R]) Get(r store.Reader, key string) (R, bool) {
	var zero R
	v, ok := r.Get(t.Ref(key))
	if !ok {
		return zero, false
	}
	rec, ok := v.(R)
	if !ok {
		return zero, false
	}
	return rec, true
}

func (t *Table[R]) Decode(row []sql.NullString) (store.Ref, any, error) {
	if len(row) != len(t.columns) {
		return store.Ref{}, nil, fmt.Errorf("decoding %s: expected %d columns, got %d", t.name, len(t.columns), len(row))
	}
	rr := &rowReader{row: row, columns: t.columns}
	key, rec := t.decode(rr)
	if rr.err != nil {
		return store.Ref{}, nil, fmt.Errorf("decoding %s: %w", t.name, rr.err)
	}
	return t.Ref(key), rec, nil
}

// IDKey encodes a uint256 entity id as a record key.
func IDKey(id *big.Int) string {
	if id == nil {
		return "0"
	}
	return id.String()
}

// PlaceholderAddressKey is the key used for address-keyed lookups before an
// address is known. No record is ever stored under it.
const PlaceholderAddressKey = "0x"

func AddressKey(address string) string {
	return strings.ToLower(address)
}

var errNotUnsigned = errors.New("not an unsigned integer")

type rowReader struct {
	row     []sql.NullString
	columns []Column
	i       int
	err     error
}

func (r *rowReader) next() (sql.NullString, Column) {
	v, col := r.row[r.i], r.columns[r.i]
	r.i++
	return v, col
}

func (r *rowReader) fail(col Column, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s value %q: %w", col.Name, value, err)
	}
}

func (r *rowReader) uint256() *big.Int {
	v, col := r.next()
	if !v.Valid {
		return nil
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(v.String), 10)
	if !ok || n.Sign() < 0 {
		r.fail(col, v.String, errNotUnsigned)
		return nil
	}
	return n
}

func (r *rowReader) number() uint64 {
	v, col := r.next()
	if !v.Valid {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v.String), 10, 64)
	if err != nil {
		r.fail(col, v.String, err)
		return 0
	}
	return n
}

func (r *rowReader) flag() bool {
	v, col := r.next()
	if !v.Valid {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.String))
	if err != nil {
		r.fail(col, v.String, err)
		return false
	}
	return b
}

func (r *rowReader) text() string {
	v, _ := r.next()
	if !v.Valid {
		return ""
	}
	return v.String
}
