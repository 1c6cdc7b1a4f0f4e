package server

import (
	"github.com/Happy-Ferret/addons-code-manager/internal/app"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

type Config struct {
	// AppConfig carries listen address, static dir and auth token. Nil
	// means app.DefaultConfig().
	AppConfig *app.Config

	// Logger is optional; a stdout logger is used when nil.
	Logger logging.Logger
}
