// Package autoload initializes the global logger from LOG_* environment
// variables as an import side effect.
package autoload

import (
	configx "github.com/lazarovttac/messirve-prototype/pkg/config"
	logx "github.com/lazarovttac/messirve-prototype/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
