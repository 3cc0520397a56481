package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// 网关注入的身份头
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Server 身份提取中间件
// 网关完成认证后通过请求头传递用户身份，这里只负责还原到 context，
// 具体的权限判断由各业务操作自行完成
func Server() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				uid := tr.RequestHeader().Get(HeaderUserID)
				role := Role(tr.RequestHeader().Get(HeaderUserRole))
				if uid != "" {
					ctx = NewContext(ctx, uid, role)
				}
			}
			return handler(ctx, req)
		}
	}
}
