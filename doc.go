// Package meeplekit 是一个桌游推荐工具包（Meeple Kit）：
// 从整理后的桌游目录训练嵌入向量，按用户口味与开局场景给出带解释的推荐。
//
// 设计要点：
// - Pipeline-first: 查询逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测
// - 训练与查询分离: 训练产出不可变的 run（目录 + 元数据），查询侧热切换
package meeplekit

import "github.com/rushteam/meeplekit/pipeline"

// 轻量 facade：便于用户直接 import "meeplekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
