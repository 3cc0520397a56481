//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/biz"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/conf"
	"github.com/duongtronghoa6a-debug/ENGLISHHUB-sub002/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp 初始化定时任务依赖
func wireApp(*conf.Bootstrap, log.Logger) (*cronApp, func(), error) {
	panic(wire.Build(data.ProviderSet, biz.ProviderSet, newCronApp))
}
