package server

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"

	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/auth"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/conf"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/constants"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/validate"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Bootstrap, svc *service.CommerceService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			// 网关身份头还原到 context
			auth.Server(),
			// 添加参数验证中间件
			validate.Validator(),
		),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	srv := http.NewServer(opts...)

	registerRoutes(srv, svc)

	// 注册健康检查端点
	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, map[string]string{"status": "ok", "service": "commerce-service"})
	})

	return srv
}

// registerRoutes 注册业务路由
func registerRoutes(srv *http.Server, svc *service.CommerceService) {
	r := srv.Route("/v1")

	r.POST("/orders", func(ctx http.Context) error {
		var in service.CreateOrderRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.CreateOrder(c, req.(*service.CreateOrderRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusCreated, out)
	})

	r.GET("/orders", func(ctx http.Context) error {
		page, pageSize := pagination(ctx)
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.ListOrders(c, page, pageSize)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.GET("/orders/{id}", func(ctx http.Context) error {
		orderID := ctx.Vars().Get("id")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.GetOrder(c, orderID)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.PUT("/orders/{id}/pay", func(ctx http.Context) error {
		orderID := ctx.Vars().Get("id")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.PayOrder(c, orderID)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.PUT("/orders/{id}/cancel", func(ctx http.Context) error {
		orderID := ctx.Vars().Get("id")
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.CancelOrder(c, orderID)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.GET("/enrollments", func(ctx http.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.ListEnrollments(c)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.GET("/teacher/revenue", func(ctx http.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.GetRevenueSummary(c)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.POST("/teacher/withdrawals", func(ctx http.Context) error {
		var in service.RequestWithdrawalRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.RequestWithdrawal(c, req.(*service.RequestWithdrawalRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusCreated, out)
	})

	r.GET("/teacher/withdrawals", func(ctx http.Context) error {
		page, pageSize := pagination(ctx)
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.ListMyWithdrawals(c, page, pageSize)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.GET("/admin/withdrawals", func(ctx http.Context) error {
		page, pageSize := pagination(ctx)
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return svc.ListPendingWithdrawals(c, page, pageSize)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})

	r.PUT("/admin/withdrawals/{id}", func(ctx http.Context) error {
		withdrawalID := ctx.Vars().Get("id")
		var in service.ProcessWithdrawalRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return svc.ProcessWithdrawal(c, withdrawalID, req.(*service.ProcessWithdrawalRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(stdhttp.StatusOK, out)
	})
}

// pagination 解析分页参数
func pagination(ctx http.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.Query().Get("page"))
	pageSize, _ := strconv.Atoi(ctx.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return page, pageSize
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = status
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	return stdhttp.StatusInternalServerError
}
