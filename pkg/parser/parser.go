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
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

func Parse(s string) ([]*pg_query.RawStmt, error) {
	result, err := pg_query.Parse(s)
	if err != nil {
		return nil, err
	}
	return result.Stmts, nil
}

// ParseTargetList parses a select list like "k, sum(v), count(*)".
// The list must stand alone, without FROM or any other clause.
func ParseTargetList(list string) ([]*pg_query.ResTarget, error) {
	stmts, err := Parse("SELECT " + list)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", list, err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("parse %q: want one expression list, got %d statements", list, len(stmts))
	}
	sel := stmts[0].GetStmt().GetSelectStmt()
	if sel == nil || !bareSelect(sel) {
		return nil, fmt.Errorf("parse %q: only an expression list is allowed", list)
	}
	ret := make([]*pg_query.ResTarget, 0, len(sel.GetTargetList()))
	for _, node := range sel.GetTargetList() {
		target := node.GetResTarget()
		if target == nil || target.GetVal() == nil {
			return nil, fmt.Errorf("parse %q: unexpected target %v", list, node)
		}
		ret = append(ret, target)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("parse %q: empty expression list", list)
	}
	return ret, nil
}

func bareSelect(sel *pg_query.SelectStmt) bool {
	return sel.GetOp() == pg_query.SetOperation_SETOP_NONE &&
		len(sel.GetDistinctClause()) == 0 &&
		len(sel.GetFromClause()) == 0 &&
		sel.GetWhereClause() == nil &&
		len(sel.GetGroupClause()) == 0 &&
		sel.GetHavingClause() == nil &&
		len(sel.GetSortClause()) == 0 &&
		sel.GetLimitCount() == nil &&
		sel.GetLimitOffset() == nil &&
		len(sel.GetValuesLists()) == 0 &&
		sel.GetWithClause() == nil &&
		sel.GetIntoClause() == nil
}
