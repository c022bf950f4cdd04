// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package set

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := Of(3, 1, 2, 3)
	assert.Len(t, s, 3)
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(4))

	s.Add(4)
	s.Remove(1)
	assert.Equal(t, []int{2, 3, 4}, Sorted(s))
	assert.Equal(t, []int{2, 3, 4}, slices.Sorted(s.All()))
}

func TestNilSetHas(t *testing.T) {
	var s Set[string]
	assert.False(t, s.Has("a"))
}
