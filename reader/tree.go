// Package reader supplies event records to the analysis, from NanoAOD-style
// ROOT trees or from memory.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/decibelcooper/mtopcorr/event"
)

// DefaultMaxConstituents is the number of constituents read per event.
const DefaultMaxConstituents = 1000

// Branches names the branch prefixes of each collection. A collection with
// prefix P is read from the count branch nP and the arrays P_pt, P_eta, ...
type Branches struct {
	Truth        string
	Jet          string
	Constituents string

	// TruthMass is the suffix of the truth mass branch, "mass" in NanoAOD.
	TruthMass string
}

// DefaultBranches returns the NanoAOD branch names of the analysis.
func DefaultBranches() Branches {
	return Branches{
		Truth:        "GenPart",
		Jet:          "PFJetAK8",
		Constituents: "PFJetAK8_cons",
		TruthMass:    "mass",
	}
}

type field struct {
	name   string
	suffix string
}

func (b Branches) truthFields() []field {
	mass := b.TruthMass
	if mass == "" {
		mass = "mass"
	}
	return []field{{"pt", "pt"}, {"eta", "eta"}, {"phi", "phi"}, {"mass", mass}, {"pdgId", "pdgId"}}
}

func (b Branches) jetFields() []field {
	return []field{{"pt", "pt"}, {"eta", "eta"}, {"phi", "phi"}, {"mass", "mass"}}
}

func (b Branches) consFields() []field {
	return []field{
		{"pt", "pt"}, {"eta", "eta"}, {"phi", "phi"}, {"mass", "mass"},
		{"pdgId", "pdgId"}, {"jetIndex", "jetIndex"},
	}
}

// Tree reads event records from one tree of a ROOT file.
type Tree struct {
	fname   string
	tname   string
	entries int64

	Branches        Branches
	MaxConstituents int
	logger          *slog.Logger
}

// Open checks that fname holds the tree tname and returns a Tree reading it.
// A nil logger selects slog.Default().
func Open(fname, tname string, br Branches, logger *slog.Logger) (*Tree, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	tree, err := getTree(f, tname)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", fname, err)
	}

	return &Tree{
		fname:           fname,
		tname:           tname,
		entries:         tree.Entries(),
		Branches:        br,
		MaxConstituents: DefaultMaxConstituents,
		logger:          logger,
	}, nil
}

func getTree(f *groot.File, tname string) (rtree.Tree, error) {
	o, err := f.Get(tname)
	if err != nil {
		return nil, fmt.Errorf("could not get tree %q: %w", tname, err)
	}
	tree, ok := o.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %q is a %s, not a tree", tname, o.Class())
	}
	return tree, nil
}

// Name returns the file the tree is read from.
func (t *Tree) Name() string { return t.fname }

// Entries returns the number of events in the tree.
func (t *Tree) Entries() int64 { return t.entries }

// Scan reads the events [beg, end) and calls fn for each of them, in
// order. Each call of Scan opens its own handle on the file, so that
// concurrent Scans over disjoint ranges are safe.
func (t *Tree) Scan(ctx context.Context, beg, end int64, fn func(idx int64, rec *event.Record) error) error {
	f, err := groot.Open(t.fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", t.fname, err)
	}
	defer f.Close()

	tree, err := getTree(f, t.tname)
	if err != nil {
		return fmt.Errorf("%q: %w", t.fname, err)
	}

	cols, rvars, err := t.bind(tree)
	if err != nil {
		return fmt.Errorf("%q: %w", t.fname, err)
	}

	r, err := rtree.NewReader(tree, rvars, rtree.WithRange(beg, end))
	if err != nil {
		return fmt.Errorf("could not create tree reader: %w", err)
	}
	defer r.Close()

	err = r.Read(func(rctx rtree.RCtx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := cols.record()
		if err != nil {
			return fmt.Errorf("event %d: %w", rctx.Entry, err)
		}
		return fn(rctx.Entry, rec)
	})
	if err != nil {
		return fmt.Errorf("could not read %q: %w", t.fname, err)
	}
	return nil
}

// bind allocates one column per branch read, typed after the branch's leaf.
func (t *Tree) bind(tree rtree.Tree) (*columns, []rtree.ReadVar, error) {
	var (
		cols  = &columns{maxCons: t.MaxConstituents}
		rvars []rtree.ReadVar
	)

	bindCollection := func(coll *collection, prefix string, fields []field) error {
		countName := "n" + prefix
		leaf := tree.Leaf(countName)
		if leaf == nil {
			coll.absent = true
			t.logger.Warn("collection absent, reading it as empty",
				"file", t.fname, "branch", countName)
			return nil
		}
		coll.n = newColumn(countName, leaf.Type())
		rvars = append(rvars, rtree.ReadVar{Name: countName, Value: coll.n.ptr.Interface()})

		coll.fields = make(map[string]column, len(fields))
		for _, fd := range fields {
			name := prefix + "_" + fd.suffix
			leaf := tree.Leaf(name)
			if leaf == nil {
				return fmt.Errorf("%w: no branch %q", event.ErrMissingData, name)
			}
			typ := leaf.Type()
			if leaf.LeafCount() != nil {
				typ = reflect.SliceOf(typ)
			}
			col := newColumn(name, typ)
			coll.fields[fd.name] = col
			rvars = append(rvars, rtree.ReadVar{Name: name, Value: col.ptr.Interface()})
		}
		return nil
	}

	if err := bindCollection(&cols.truth, t.Branches.Truth, t.Branches.truthFields()); err != nil {
		return nil, nil, err
	}
	if err := bindCollection(&cols.jets, t.Branches.Jet, t.Branches.jetFields()); err != nil {
		return nil, nil, err
	}
	if err := bindCollection(&cols.cons, t.Branches.Constituents, t.Branches.consFields()); err != nil {
		return nil, nil, err
	}
	return cols, rvars, nil
}
