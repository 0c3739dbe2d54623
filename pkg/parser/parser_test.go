// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	stmts, err := Parse("SELECT 42")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Equal(t, int32(42), stmts[0].Stmt.GetSelectStmt().GetTargetList()[0].GetResTarget().GetVal().GetAConst().GetIval().Ival)
}

func TestParseTargetList(t *testing.T) {
	targets, err := ParseTargetList("k, sum(v + 1), count(*), avg(v::double precision)")
	require.NoError(t, err)
	require.Len(t, targets, 4)
	assert.Equal(t, "k", targets[0].GetVal().GetColumnRef().GetFields()[0].GetString_().GetSval())

	sum := targets[1].GetVal().GetFuncCall()
	require.NotNil(t, sum)
	assert.Equal(t, "sum", sum.GetFuncname()[0].GetString_().GetSval())
	require.Len(t, sum.GetArgs(), 1)
	assert.NotNil(t, sum.GetArgs()[0].GetAExpr())

	assert.True(t, targets[2].GetVal().GetFuncCall().GetAggStar())
	assert.NotNil(t, targets[3].GetVal().GetFuncCall().GetArgs()[0].GetTypeCast())

	for _, bad := range []string{
		"",
		"sum(v",
		"sum(v) from t",
		"k where k > 1",
		"k; select 1",
		"k order by k",
		"distinct k",
	} {
		_, err = ParseTargetList(bad)
		assert.Error(t, err, bad)
	}
}
