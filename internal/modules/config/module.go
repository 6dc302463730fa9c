package config

import "go.uber.org/fx"

// Module отдаёт уже загруженный *Config: main читает его раньше fx, чтобы поднять логгер.
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
	)
}
