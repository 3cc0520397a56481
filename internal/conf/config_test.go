package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBootstrap() *Bootstrap {
	bc := &Bootstrap{
		Server: &Server{},
		Data:   &Data{},
		Ledger: &Ledger{PendingOrderTTL: "24h"},
		Log:    &Log{Level: "info"},
	}
	bc.Server.Http.Addr = "0.0.0.0:8000"
	bc.Server.Grpc.Addr = "0.0.0.0:9000"
	bc.Data.Database.Source = "root:root@tcp(127.0.0.1:3306)/englishhub"
	bc.Data.Redis.Addr = "127.0.0.1:6379"
	return bc
}

func TestBootstrapValidate(t *testing.T) {
	require.NoError(t, validBootstrap().Validate())

	tests := []struct {
		name   string
		mutate func(bc *Bootstrap)
	}{
		{"missing server", func(bc *Bootstrap) { bc.Server = nil }},
		{"missing http addr", func(bc *Bootstrap) { bc.Server.Http.Addr = "" }},
		{"missing grpc addr", func(bc *Bootstrap) { bc.Server.Grpc.Addr = "" }},
		{"missing data", func(bc *Bootstrap) { bc.Data = nil }},
		{"missing database source", func(bc *Bootstrap) { bc.Data.Database.Source = "" }},
		{"missing redis addr", func(bc *Bootstrap) { bc.Data.Redis.Addr = "" }},
		{"invalid ttl", func(bc *Bootstrap) { bc.Ledger.PendingOrderTTL = "one day" }},
		{"missing log", func(bc *Bootstrap) { bc.Log = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := validBootstrap()
			tt.mutate(bc)
			assert.Error(t, bc.Validate())
		})
	}
}

func TestPendingOrderTTLDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, (*Ledger)(nil).PendingOrderTTLDuration())
	assert.Equal(t, 24*time.Hour, (&Ledger{}).PendingOrderTTLDuration())
	assert.Equal(t, 24*time.Hour, (&Ledger{PendingOrderTTL: "bogus"}).PendingOrderTTLDuration())
	assert.Equal(t, 24*time.Hour, (&Ledger{PendingOrderTTL: "-1h"}).PendingOrderTTLDuration())
	assert.Equal(t, 72*time.Hour, (&Ledger{PendingOrderTTL: "72h"}).PendingOrderTTLDuration())
}
