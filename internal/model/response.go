/**
 * 模型:响应模型
 * @description: 守护进程 HTTP 接口的统一响应结构
 */
package model

// APIResponse 通用API响应结构
type APIResponse struct {
	Code    int         `json:"code,omitempty"`  // 响应状态码，可选
	Status  string      `json:"status"`          // 响应状态："success" 或 "error"
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据，可选
	Error   string      `json:"error,omitempty"` // 错误信息，可选
}
