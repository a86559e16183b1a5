package providers

import (
	"github.com/smallbiznis/bookneo/internal/providers/email"
	"github.com/smallbiznis/bookneo/internal/providers/slack"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	slack.Module,
)
