package substrate

import (
	"testing"
	"time"

	"github.com/gabapcia/credwatch/internal/eventstream"
	httptransport "github.com/gabapcia/credwatch/internal/pkg/transport/http"
	jsonrpcMocks "github.com/gabapcia/credwatch/internal/pkg/transport/jsonrpc/mocks"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("should poll at the block time by default", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		sidecar := httptransport.NewClient()

		c := NewClient(rpc, sidecar, "http://sidecar:8080")

		assert.Equal(t, rpc, c.rpc)
		assert.Same(t, sidecar, c.sidecar)
		assert.Equal(t, averageBlockTime, c.pollInterval)

		var _ eventstream.Blockchain = c
	})

	t.Run("should apply the poll interval option", func(t *testing.T) {
		c := NewClient(jsonrpcMocks.NewClient(t), httptransport.NewClient(), "http://sidecar:8080", WithPollInterval(time.Second))

		assert.Equal(t, time.Second, c.pollInterval)
	})
}
