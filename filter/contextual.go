package filter

import (
	"context"

	"github.com/rushteam/meeplekit/core"
)

// PlayerCountFilter 剔除不支持当前人数的游戏。
// 查询未指定人数（0）时放行全部；人数区间缺失的游戏在约束生效时剔除，
// 宁可漏掉也不推一个开不了局的游戏。
type PlayerCountFilter struct{}

func (f *PlayerCountFilter) Name() string {
	return "filter.player_count"
}

func (f *PlayerCountFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx.Players <= 0 {
		return false, nil
	}
	if item.Game == nil {
		return true, nil
	}
	return !item.Game.HasPlayers(rctx.Players), nil
}

// PlayTimeFilter 剔除超出可用时长的游戏。
// 查询未指定时长（0）时放行全部；时长缺失的游戏在约束生效时剔除。
type PlayTimeFilter struct{}

func (f *PlayTimeFilter) Name() string {
	return "filter.play_time"
}

func (f *PlayTimeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx.AvailableMinutes <= 0 {
		return false, nil
	}
	if item.Game == nil {
		return true, nil
	}
	return !item.Game.FitsWithin(rctx.AvailableMinutes), nil
}

// LikedFilter 兜底剔除用户已喜欢的游戏。
// 召回阶段已排除喜欢集合，这里防御召回实现被替换后语义丢失。
type LikedFilter struct{}

func (f *LikedFilter) Name() string {
	return "filter.liked"
}

func (f *LikedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	for _, id := range rctx.LikedIDs {
		if id == item.ID {
			return true, nil
		}
	}
	return false, nil
}
