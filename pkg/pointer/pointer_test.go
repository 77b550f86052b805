// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/epiclogue/pkg/pointer"
)

func TestToAndVal(t *testing.T) {
	value := "intro"
	p := pointer.To(value)
	value = "changed"

	assert.Equal(t, "intro", pointer.Val(p))
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Equal(t, 0, pointer.Val[int](nil))
}
