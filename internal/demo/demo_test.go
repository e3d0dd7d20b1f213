/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package demo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtr"
	"dirpx.dev/rtr/internal/demo"
)

func TestDemoRegistry(t *testing.T) {
	require.NoError(t, rtr.RegistrationErr())

	for _, name := range []string{"Animal", "Dog", "Point", "Color"} {
		assert.True(t, rtr.TypeByName(name).IsRegistered(), name)
	}
	assert.True(t, rtr.Get[demo.Dog]().IsDerivedFrom(rtr.TypeByName("Animal")))

	out, err := rtr.TypeByName("Dog").Invoke("speak", demo.Dog{Animal: demo.Animal{Name: "Rex"}})
	require.NoError(t, err)
	assert.Equal(t, "Rex makes a sound", out.Interface())

	sum, err := rtr.Invoke("add", 1.5, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 3.5, sum.Interface())

	sum, err = rtr.Invoke("add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Interface())

	assert.Equal(t, "(1, 2)", rtr.Registry().Variant(demo.NewPoint(1, 2)).String())
}
