package core

import (
	"fmt"
	"strings"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分类：
//   - CONFIG_INVALID：配置/前置条件错误，训练期致命，不产出任何部分工件
//   - NOT_FOUND：请求的喜欢游戏在目录中不存在，调用方可恢复，按标识逐个上报
//   - 空的推荐结果不是错误：合法查询返回空列表 + nil error
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CONFIG_INVALID"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "embed", "taste"）

	// IDs 携带逐个上报的标识列表（NOT_FOUND 场景）。
	IDs []string
}

func (e *DomainError) Error() string {
	if len(e.IDs) > 0 {
		return e.Message + ": " + strings.Join(e.IDs, ", ")
	}
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewConfigError 创建配置错误（CONFIG_INVALID），format 支持 fmt 占位符。
func NewConfigError(module, format string, args ...any) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeConfigInvalid,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFoundError 创建 NOT_FOUND 错误，ids 是未命中的标识列表。
func NewNotFoundError(module, message string, ids []string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    ErrorCodeNotFound,
		Message: message,
		IDs:     ids,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 喜欢游戏标识在目录中不存在
	ErrorCodeConfigInvalid = "CONFIG_INVALID" // 配置/前置条件错误，致命
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 查询输入无效
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleFeature   = "feature"   // 特征构建
	ModuleEmbed     = "embed"     // 嵌入训练
	ModuleTaste     = "taste"     // 偏好聚合
	ModuleRank      = "rank"      // 相似度排序
	ModuleExplain   = "explain"   // 解释生成
	ModuleStore     = "store"     // 存储
	ModuleConfig    = "config"    // 配置
	ModuleRecommend = "recommend" // 推荐门面
)

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsConfigInvalid 检查错误是否为 CONFIG_INVALID。
func IsConfigInvalid(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeConfigInvalid
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
