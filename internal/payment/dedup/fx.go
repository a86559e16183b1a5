package dedup

import "go.uber.org/fx"

var Module = fx.Module("payment.dedup",
	fx.Provide(Provide),
)
