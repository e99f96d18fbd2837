package substrate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/eventstream"
	httptransport "github.com/gabapcia/credwatch/internal/pkg/transport/http"
	jsonrpcMocks "github.com/gabapcia/credwatch/internal/pkg/transport/jsonrpc/mocks"
	"github.com/gabapcia/credwatch/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const finalizedHash = `"0xfeed"`

// newSidecar serves decoded blocks for heights up to maxHeight. Heights in
// lying are answered with the block of the next height.
func newSidecar(t *testing.T, maxHeight uint64, lying ...uint64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.URL.Path, "/blocks/")
		if !ok {
			http.NotFound(w, r)
			return
		}

		height, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if height == 500 {
			w.WriteHeader(http.StatusTeapot)
			return
		}

		if height > maxHeight {
			http.NotFound(w, r)
			return
		}

		for _, h := range lying {
			if h == height {
				height++
			}
		}

		idx := 0
		_ = json.NewEncoder(w).Encode(chain.Block{
			Height: height,
			Hash:   canonhash.Hash{byte(height)},
			Events: []chain.Event{{Index: 0, Pallet: "ctype", Method: "CTypeCreated", ExtrinsicIndex: &idx}},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T, rpc *jsonrpcMocks.Client, sidecar *httptest.Server) *client {
	t.Helper()

	return NewClient(rpc, httptransport.NewClient(httptransport.WithRetryMax(0)), sidecar.URL, WithPollInterval(time.Hour))
}

func expectHead(rpc *jsonrpcMocks.Client, height uint64) {
	header := `{"parentHash":"0xbeef","number":"` + string(types.HexFromUint64(height)) + `"}`

	rpc.EXPECT().Fetch(mock.Anything, "chain_getFinalizedHead").Return(json.RawMessage(finalizedHash), nil)
	rpc.EXPECT().Fetch(mock.Anything, "chain_getHeader", "0xfeed").Return(json.RawMessage(header), nil)
}

func TestClient_getFinalizedHeight(t *testing.T) {
	t.Run("should read the height of the finalized head", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectHead(rpc, 0x1a2b)

		c := newTestClient(t, rpc, newSidecar(t, 0))
		height, err := c.getFinalizedHeight(t.Context())

		require.NoError(t, err)
		assert.Equal(t, uint64(0x1a2b), height.Uint64())
	})

	t.Run("should fail when the head cannot be read", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectedErr := errors.New("connection refused")
		rpc.EXPECT().Fetch(mock.Anything, "chain_getFinalizedHead").Return(nil, expectedErr)

		c := newTestClient(t, rpc, newSidecar(t, 0))
		_, err := c.getFinalizedHeight(t.Context())

		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("should fail on a malformed header", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		rpc.EXPECT().Fetch(mock.Anything, "chain_getFinalizedHead").Return(json.RawMessage(finalizedHash), nil)
		rpc.EXPECT().Fetch(mock.Anything, "chain_getHeader", "0xfeed").Return(json.RawMessage(`{"number":"12"}`), nil)

		c := newTestClient(t, rpc, newSidecar(t, 0))
		_, err := c.getFinalizedHeight(t.Context())

		assert.Error(t, err)
	})
}

func TestClient_FetchBlockByHeight(t *testing.T) {
	t.Run("should decode the block served by the sidecar", func(t *testing.T) {
		c := newTestClient(t, jsonrpcMocks.NewClient(t), newSidecar(t, 10))

		block, err := c.FetchBlockByHeight(t.Context(), types.HexFromUint64(7))

		require.NoError(t, err)
		assert.Equal(t, uint64(7), block.Height)
		assert.Equal(t, canonhash.Hash{7}, block.Hash)
		require.Len(t, block.Events, 1)
		assert.Equal(t, "ctype.CTypeCreated", block.Events[0].Key().String())
	})

	t.Run("should report unknown heights", func(t *testing.T) {
		c := newTestClient(t, jsonrpcMocks.NewClient(t), newSidecar(t, 10))

		_, err := c.FetchBlockByHeight(t.Context(), types.HexFromUint64(11))

		assert.ErrorIs(t, err, ErrBlockNotFound)
	})

	t.Run("should report unexpected statuses", func(t *testing.T) {
		c := newTestClient(t, jsonrpcMocks.NewClient(t), newSidecar(t, 1000))

		_, err := c.FetchBlockByHeight(t.Context(), types.HexFromUint64(500))

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("should reject a block of another height", func(t *testing.T) {
		c := newTestClient(t, jsonrpcMocks.NewClient(t), newSidecar(t, 10, 4))

		_, err := c.FetchBlockByHeight(t.Context(), types.HexFromUint64(4))

		assert.ErrorIs(t, err, ErrHeightMismatch)
	})
}

func TestClient_Subscribe(t *testing.T) {
	collect := func(t *testing.T, eventsCh <-chan eventstream.BlockchainEvent, n int) []eventstream.BlockchainEvent {
		t.Helper()

		events := make([]eventstream.BlockchainEvent, 0, n)
		for len(events) < n {
			select {
			case ev := <-eventsCh:
				events = append(events, ev)
			case <-time.After(2 * time.Second):
				t.Fatalf("received %d of %d events", len(events), n)
			}
		}

		return events
	}

	t.Run("should emit every height up to the finalized head", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectHead(rpc, 4)

		c := newTestClient(t, rpc, newSidecar(t, 10))
		eventsCh, err := c.Subscribe(t.Context(), types.HexFromUint64(2))
		require.NoError(t, err)

		events := collect(t, eventsCh, 3)
		for i, ev := range events {
			require.NoError(t, ev.Err)
			assert.Equal(t, uint64(2+i), ev.Height.Uint64())
			assert.Equal(t, uint64(2+i), ev.Block.Height)
		}
	})

	t.Run("should start at the finalized head", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectHead(rpc, 6)

		c := newTestClient(t, rpc, newSidecar(t, 10))
		eventsCh, err := c.Subscribe(t.Context(), "")
		require.NoError(t, err)

		events := collect(t, eventsCh, 1)
		assert.Equal(t, uint64(6), events[0].Height.Uint64())
	})

	t.Run("should emit fetch failures with their height", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectHead(rpc, 12)

		c := newTestClient(t, rpc, newSidecar(t, 10))
		eventsCh, err := c.Subscribe(t.Context(), types.HexFromUint64(10))
		require.NoError(t, err)

		events := collect(t, eventsCh, 3)
		assert.NoError(t, events[0].Err)
		assert.Equal(t, uint64(11), events[1].Height.Uint64())
		assert.ErrorIs(t, events[1].Err, ErrBlockNotFound)
		assert.ErrorIs(t, events[2].Err, ErrBlockNotFound)
	})

	t.Run("should emit head failures without a height", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectedErr := errors.New("connection refused")
		rpc.EXPECT().Fetch(mock.Anything, "chain_getFinalizedHead").Return(nil, expectedErr)

		c := newTestClient(t, rpc, newSidecar(t, 10))
		eventsCh, err := c.Subscribe(t.Context(), types.HexFromUint64(1))
		require.NoError(t, err)

		events := collect(t, eventsCh, 1)
		assert.Empty(t, events[0].Height)
		assert.ErrorIs(t, events[0].Err, expectedErr)
	})

	t.Run("should fail when the starting head cannot be read", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectedErr := errors.New("connection refused")
		rpc.EXPECT().Fetch(mock.Anything, "chain_getFinalizedHead").Return(nil, expectedErr)

		c := newTestClient(t, rpc, newSidecar(t, 10))
		_, err := c.Subscribe(t.Context(), "")

		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("should close the channel when the context ends", func(t *testing.T) {
		rpc := jsonrpcMocks.NewClient(t)
		expectHead(rpc, 1)

		ctx, cancel := context.WithCancel(t.Context())
		c := newTestClient(t, rpc, newSidecar(t, 10))
		eventsCh, err := c.Subscribe(ctx, types.HexFromUint64(1))
		require.NoError(t, err)

		collect(t, eventsCh, 1)
		cancel()

		select {
		case _, ok := <-eventsCh:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel was not closed")
		}
	})
}
