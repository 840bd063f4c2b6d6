package filter

import (
	"context"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式做自定义过滤：表达式返回 false 的候选被剔除。
// 表达式在创建时编译一次，可并发求值。
type ExprFilter struct {
	rule *dsl.Rule
}

// NewExprFilter 编译表达式并创建过滤器；空表达式恒不过滤。
func NewExprFilter(expr string) (*ExprFilter, error) {
	rule, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.NewConfigError(core.ModuleConfig, "invalid filter expression %q: %v", expr, err)
	}
	return &ExprFilter{rule: rule}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.rule.Evaluate(item, rctx)
	if err != nil {
		return false, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, err.Error())
	}
	return !keep, nil
}
