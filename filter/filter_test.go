// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateString(t *testing.T) {
	tests := []struct {
		name string
		pred *Predicate
		want string
	}{
		{"eq_int", Eq("id", int64(1)), `(eq id 1)`},
		{"eq_string", Eq("name", "a"), `(eq name "a")`},
		{"gt", Gt("id", int64(5)), `(gt id 5)`},
		{"le_float", Le("score", 1.5), `(le score 1.5)`},
		{"in", In("status", "ok", "late"), `(in status "ok" "late")`},
		{"not", Not(Eq("flag", true)), `(not (eq flag true))`},
		{
			"and",
			And(Gt("id", int64(1)), Eq("name", "a")),
			`(and (gt id 1) (eq name "a"))`,
		},
		{
			"or_nested",
			Or(Lt("id", int64(2)), And(Ge("id", int64(10)), Ne("name", "x"))),
			`(or (lt id 2) (and (ge id 10) (ne name "x")))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.String())
		})
	}
}

func TestPredicateEqual(t *testing.T) {
	a := And(Gt("id", int64(1)), Eq("name", "a"))
	b := And(Gt("id", int64(1)), Eq("name", "a"))
	c := And(Gt("id", int64(2)), Eq("name", "a"))

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))

	var nilPred *Predicate
	assert.True(t, nilPred.Equal(nil))
	assert.False(t, a.Equal(nil))
	assert.False(t, nilPred.Equal(a))
}

func TestPredicateFingerprint(t *testing.T) {
	a := Or(Eq("x", int64(1)), Eq("y", int64(2)))
	b := Or(Eq("x", int64(1)), Eq("y", int64(2)))
	c := Or(Eq("y", int64(2)), Eq("x", int64(1)))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	var nilPred *Predicate
	assert.Zero(t, nilPred.Fingerprint())
}

func TestPredicateImmutableChildren(t *testing.T) {
	children := []*Predicate{Eq("a", int64(1)), Eq("b", int64(2))}
	p := And(children...)
	children[0] = Eq("c", int64(3))
	assert.Equal(t, `(and (eq a 1) (eq b 2))`, p.String())
}
