// Package errors 跨模块共享的错误定义
package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：更新时 version 不匹配，记录已被其他请求修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
