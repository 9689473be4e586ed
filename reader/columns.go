package reader

import (
	"fmt"
	"reflect"

	"github.com/decibelcooper/mtopcorr/event"
)

// column is one branch bound to a freshly allocated value of the branch's
// own type, so that trees storing Float_t, Double_t, Int_t or UInt_t
// all read into the same event fields.
type column struct {
	name string
	ptr  reflect.Value
}

func newColumn(name string, typ reflect.Type) column {
	return column{name: name, ptr: reflect.New(typ)}
}

func (c column) value() reflect.Value {
	return c.ptr.Elem()
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (c column) count() (int, error) {
	v, ok := number(c.value())
	if !ok {
		return 0, fmt.Errorf("branch %q: %s is not a count", c.name, c.value().Type())
	}
	return int(v), nil
}

func (c column) elems(max int) (reflect.Value, error) {
	v := c.value()
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return reflect.Value{}, fmt.Errorf("branch %q: %s is not a collection", c.name, v.Type())
	}
	if max > 0 && v.Len() > max {
		v = v.Slice(0, max)
	}
	return v, nil
}

func (c column) floats(max int) ([]float64, error) {
	v, err := c.elems(max)
	if err != nil {
		return nil, err
	}
	out := make([]float64, v.Len())
	for i := range out {
		x, ok := number(v.Index(i))
		if !ok {
			return nil, fmt.Errorf("branch %q: %s is not numeric", c.name, v.Index(i).Type())
		}
		out[i] = x
	}
	return out, nil
}

func (c column) ints(max int) ([]int32, error) {
	xs, err := c.floats(max)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(xs))
	for i, x := range xs {
		out[i] = int32(x)
	}
	return out, nil
}

// collection is the set of columns of one entity: its count and its
// parallel arrays. An absent collection reads as empty.
type collection struct {
	absent bool
	n      column
	fields map[string]column
}

func (c *collection) get(field string, max int) ([]float64, error) {
	return c.fields[field].floats(max)
}

func (c *collection) size(max int) (int, error) {
	n, err := c.n.count()
	if err != nil {
		return 0, err
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// columns groups the collections making up one event.
type columns struct {
	truth, jets, cons collection
	maxCons           int
}

func (cs *columns) record() (*event.Record, error) {
	var (
		rec = &event.Record{}
		err error
	)

	if !cs.truth.absent {
		p := &rec.Truth
		if p.N, err = cs.truth.size(0); err != nil {
			return nil, err
		}
		if p.Pt, err = cs.truth.get("pt", 0); err != nil {
			return nil, err
		}
		if p.Eta, err = cs.truth.get("eta", 0); err != nil {
			return nil, err
		}
		if p.Phi, err = cs.truth.get("phi", 0); err != nil {
			return nil, err
		}
		if p.Mass, err = cs.truth.get("mass", 0); err != nil {
			return nil, err
		}
		if p.PdgID, err = cs.truth.fields["pdgId"].ints(0); err != nil {
			return nil, err
		}
	}

	if !cs.jets.absent {
		j := &rec.Jets
		if j.N, err = cs.jets.size(0); err != nil {
			return nil, err
		}
		if j.Pt, err = cs.jets.get("pt", 0); err != nil {
			return nil, err
		}
		if j.Eta, err = cs.jets.get("eta", 0); err != nil {
			return nil, err
		}
		if j.Phi, err = cs.jets.get("phi", 0); err != nil {
			return nil, err
		}
		if j.Mass, err = cs.jets.get("mass", 0); err != nil {
			return nil, err
		}
	}

	if !cs.cons.absent {
		c := &rec.Constituents
		max := cs.maxCons
		if c.N, err = cs.cons.size(max); err != nil {
			return nil, err
		}
		if c.Pt, err = cs.cons.get("pt", max); err != nil {
			return nil, err
		}
		if c.Eta, err = cs.cons.get("eta", max); err != nil {
			return nil, err
		}
		if c.Phi, err = cs.cons.get("phi", max); err != nil {
			return nil, err
		}
		if c.Mass, err = cs.cons.get("mass", max); err != nil {
			return nil, err
		}
		if c.PdgID, err = cs.cons.fields["pdgId"].ints(max); err != nil {
			return nil, err
		}
		if c.JetIndex, err = cs.cons.fields["jetIndex"].ints(max); err != nil {
			return nil, err
		}
	}

	return rec, nil
}
