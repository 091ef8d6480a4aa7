package tests

import (
	"context"
	"os"
	"testing"
	"time"

	"search-insight-miner/config"
	"search-insight-miner/internal/app/inngest/warm"
	pkginngest "search-insight-miner/internal/pkg/inngest"

	"github.com/inngest/inngestgo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// Sends a real event to a local Inngest dev server (npx inngest-cli dev).
type WarmSearchJobTestSuite struct {
	suite.Suite

	app    *fx.App
	client inngestgo.Client
}

func (s *WarmSearchJobTestSuite) SetupTest() {
	var client inngestgo.Client

	s.app = fx.New(
		fx.NopLogger,
		fx.Provide(func() *viper.Viper {
			vp := config.NewViper()
			vp.Set("INNGEST_DEV", "1")
			vp.Set("INNGEST_APP_ID", "test-app")
			return vp
		}),
		fx.Provide(config.NewConfig),
		fx.Provide(pkginngest.NewInngestClient),
		fx.Populate(&client),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.Require().NoError(s.app.Start(ctx))
	s.client = client
}

func (s *WarmSearchJobTestSuite) TearDownTest() {
	if s.app == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.Require().NoError(s.app.Stop(ctx))
}

func (s *WarmSearchJobTestSuite) TestSendSearchTermRequested() {
	s.Run("e2e_send", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		evtID, err := s.client.Send(ctx, warm.Event("wood coasters", false))
		s.Require().NoError(err)
		s.NotEmpty(evtID)
	})
}

func TestWarmSearchJobTestSuite(t *testing.T) {
	if os.Getenv("INNGEST_E2E") == "" {
		t.Skip("set INNGEST_E2E=1 with a local inngest dev server running")
	}
	suite.Run(t, new(WarmSearchJobTestSuite))
}
