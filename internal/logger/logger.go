// Package logger builds the zap logger shared by both binaries.
package logger

import (
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/config"
)

func New(env string) (*zap.Logger, error) {
	if config.IsProduction(env) {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
