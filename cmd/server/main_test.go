package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestServerOptions_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(fx.NopLogger, serverOptions()))
}
