/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package str

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerFirst(t *testing.T) {
	assert.Equal(t, "validation", ToLowerFirst("Validation"))
	assert.Equal(t, "runSnapshotAspect", ToLowerFirst("RunSnapshotAspect"))
	assert.Equal(t, "", ToLowerFirst(""))
}

func TestSplitTrim(t *testing.T) {
	assert.Nil(t, SplitTrim("  ", ","))
	assert.Equal(t, []string{"4", "2"}, SplitTrim(" 4, 2 ", ","))
	assert.Equal(t, []string{"a", ""}, SplitTrim("a,", ","))
}
