package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(load, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(plan, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(verify, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
