package logger

import "go.uber.org/zap"

// New builds the process logger. Production gets JSON output at info level,
// everything else gets the development console encoder.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
