package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookneo/internal/booking"
	"github.com/smallbiznis/bookneo/internal/clock"
	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/smallbiznis/bookneo/internal/migration"
	"github.com/smallbiznis/bookneo/internal/observability"
	"github.com/smallbiznis/bookneo/internal/payment"
	"github.com/smallbiznis/bookneo/internal/providers"
	"github.com/smallbiznis/bookneo/internal/server"
	"github.com/smallbiznis/bookneo/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional Domains
		providers.Module,
		booking.Module,
		payment.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
