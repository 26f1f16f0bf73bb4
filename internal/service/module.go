package service

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewPasswordScheme,
		NewAccounts,
		NewLists,
	)
)
