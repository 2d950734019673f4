// Package v1 check.v1 服务的请求与响应消息。
package v1

type ReadyCheckReq struct{}

type ReadyCheckReply struct {
	Status  string            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}
