package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/meeplekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("game", cel.DynType),
		cel.Variable("query", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Rule 是编译后的候选筛选规则，使用 CEL (Common Expression Language) 实现。
// 编译一次，可并发对任意多个候选求值。
//
// 求值环境：
//   - game.min_players / game.max_players / game.playing_time_minutes /
//     game.avg_rating / game.num_ratings / game.complexity / game.year_published
//   - item.id / item.score
//   - query.players / query.available_minutes / query.liked_ids
//
// 示例：
//   - `game.complexity <= 3.0` → 剔除过重的游戏
//   - `game.avg_rating >= 7.0 && game.num_ratings >= 100` → 只留口碑稳定的
//   - `game.year_published >= 2010 || item.score > 0.9` → 老游戏需要更高相似度
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条 CEL 规则；空表达式返回恒真规则。
func Compile(expr string) (*Rule, error) {
	r := &Rule{expr: expr}
	if expr == "" {
		return r, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	r.prg = prg
	return r, nil
}

// Expr 返回规则的原始表达式。
func (r *Rule) Expr() string { return r.expr }

// Evaluate 对一个候选求值，返回布尔结果。
// 表达式必须返回 bool，否则报错。
func (r *Rule) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if r.prg == nil {
		return true, nil
	}

	out, _, err := r.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	game := map[string]interface{}{}
	if it.Game != nil {
		game = map[string]interface{}{
			"name":                 it.Game.Name,
			"min_players":          it.Game.MinPlayers,
			"max_players":          it.Game.MaxPlayers,
			"playing_time_minutes": it.Game.PlayingTimeMinutes,
			"complexity":           it.Game.Complexity,
			"avg_rating":           it.Game.AvgRating,
			"num_ratings":          it.Game.NumRatings,
			"year_published":       it.Game.YearPublished,
		}
	}

	item := map[string]interface{}{
		"id":    it.ID,
		"score": it.Score,
	}

	query := map[string]interface{}{}
	if rctx != nil {
		query = map[string]interface{}{
			"players":           rctx.Players,
			"available_minutes": rctx.AvailableMinutes,
			"liked_ids":         rctx.LikedIDs,
		}
		for k, v := range rctx.Params {
			query[k] = v
		}
	}

	return map[string]interface{}{
		"item":  item,
		"game":  game,
		"query": query,
	}
}
