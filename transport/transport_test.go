package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	errorsmod "cosmossdk.io/errors"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/stretchr/testify/require"
)

func writeCerts(t *testing.T) CryptoConfig {
	t.Helper()
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	dir := t.TempDir()
	cfg := CryptoConfig{
		CertFile:   filepath.Join(dir, "cert.pem"),
		KeyFile:    filepath.Join(dir, "key.pem"),
		CAFile:     filepath.Join(dir, "cert.pem"),
		ServerName: "localhost",
	}
	require.NoError(t, os.WriteFile(cfg.CertFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(cfg.KeyFile, keyPEM, 0o600))
	return cfg
}

func startServer(t *testing.T, cfg CryptoConfig, handler Handler) string {
	t.Helper()
	srv, err := NewServer(cfg, handler)
	require.NoError(t, err)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return lis.Addr().String()
}

func buildMessage(t *testing.T, seq uint64) *core.ReceiveMessage {
	t.Helper()
	raw := []byte(`{"amount":"100","denom":"uatom","receiver":"osmo1receiver","sender":"cosmos1sender"}`)
	p := &core.ParsedPacket{
		Sequence:      seq,
		SrcPort:       "transfer",
		SrcChannel:    "channel-7",
		DstPort:       "transfer",
		DstChannel:    "channel-0",
		TimeoutHeight: "1-500",
		Data:          core.FungibleTokenPacketData{Amount: "100", Denom: "uatom", Sender: "cosmos1sender", Receiver: "osmo1receiver"},
		RawData:       raw,
	}
	pair := core.RelayPair{SrcChainID: "cosmoshub-4", Signer: "osmo1signer"}
	msg, err := core.NewMessageBuilder(pair, core.NoProofProvider{}).Build(context.Background(), p, 1000)
	require.NoError(t, err)
	return msg
}

func TestDeliver(t *testing.T) {
	cfg := writeCerts(t)

	var (
		mu       sync.Mutex
		received []*chantypes.MsgRecvPacket
	)
	addr := startServer(t, cfg, func(_ context.Context, msg *chantypes.MsgRecvPacket) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	})

	client, err := NewClient(addr, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg := buildMessage(t, 42)
	require.NoError(t, client.Deliver(ctx, msg))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, msg.Packet(), received[0].Packet)
	require.Equal(t, msg.ProofHeight(), received[0].ProofHeight)
	require.Equal(t, "osmo1signer", received[0].Signer)
}

func TestDeliverHandlerFailure(t *testing.T) {
	cfg := writeCerts(t)
	addr := startServer(t, cfg, func(context.Context, *chantypes.MsgRecvPacket) error {
		return errors.New("submitter unavailable")
	})

	client, err := NewClient(addr, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Deliver(ctx, buildMessage(t, 1))
	require.Error(t, err)
	require.True(t, errorsmod.IsOf(err, core.ErrDelivery))
}

func TestDeliverTimeout(t *testing.T) {
	cfg := writeCerts(t)
	release := make(chan struct{})
	addr := startServer(t, cfg, func(context.Context, *chantypes.MsgRecvPacket) error {
		<-release
		return nil
	})
	// runs before the server cleanup so GracefulStop is not held by the handler
	t.Cleanup(func() { close(release) })

	client, err := NewClient(addr, cfg, WithDeliverTimeout(200*time.Millisecond))
	require.NoError(t, err)
	defer client.Close()

	start := time.Now()
	err = client.Deliver(context.Background(), buildMessage(t, 1))
	require.Error(t, err)
	require.True(t, errorsmod.IsOf(err, core.ErrDelivery))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestWithDeliverTimeoutIgnoresNonPositive(t *testing.T) {
	c := &Client{timeout: DefaultDeliverTimeout}
	WithDeliverTimeout(0)(c)
	require.Equal(t, DefaultDeliverTimeout, c.timeout)
	WithDeliverTimeout(time.Second)(c)
	require.Equal(t, time.Second, c.timeout)
}

func TestDeliverUntrustedServer(t *testing.T) {
	addr := startServer(t, CryptoConfig{}, func(context.Context, *chantypes.MsgRecvPacket) error {
		return nil
	})

	// the ephemeral certificate is not signed by the configured CA
	client, err := NewClient(addr, writeCerts(t))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.Error(t, client.Deliver(ctx, buildMessage(t, 1)))
}

func TestDeliverInsecureSkipVerify(t *testing.T) {
	addr := startServer(t, CryptoConfig{}, func(context.Context, *chantypes.MsgRecvPacket) error {
		return nil
	})

	client, err := NewClient(addr, CryptoConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, client.Deliver(ctx, buildMessage(t, 1)))
}

func TestServerTLSInvalid(t *testing.T) {
	_, err := CryptoConfig{CertFile: "cert.pem"}.ServerTLS()
	require.Error(t, err)

	_, err = CryptoConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")}.ClientTLS()
	require.Error(t, err)
}
