// README: zap logger construction (development vs production encoders).
package infra

import (
	"go.uber.org/zap"
)

func NewLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
