package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "listings.events.listing.created", Subject(DefaultSubjectPrefix, "listing.created"))
}

func TestNewNATSSink_NilConnIsNoop(t *testing.T) {
	// Arrange
	sink := NewNATSSink(nil, "")

	// Act
	err := sink.Forward(context.Background(), &EventEnvelope{EventName: "listing.created"})

	// Assert
	assert.NoError(t, err)
	assert.IsType(t, &noopSink{}, sink)
}

func TestConnectNATS_EmptyURL(t *testing.T) {
	conn, cleanup, err := ConnectNATS("", log.DefaultLogger)

	require.NoError(t, err)
	assert.Nil(t, conn)
	cleanup()
}

func startNATS(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func TestNATSSink_Forward(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Arrange
	url := startNATS(t)
	conn, cleanup, err := ConnectNATS(url, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	received := make(chan *nats.Msg, 1)
	sub, err := conn.ChanSubscribe(DefaultSubjectPrefix+".>", received)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, conn.Flush())

	msg, err := EventToMessage(newCreatedEvent("listing-7"))
	require.NoError(t, err)
	envelope, err := MessageToEnvelope(msg)
	require.NoError(t, err)

	sink := NewNATSSink(conn, DefaultSubjectPrefix)

	// Act
	err = sink.Forward(context.Background(), envelope)

	// Assert
	require.NoError(t, err)
	select {
	case got := <-received:
		assert.Equal(t, "listings.events.listing.created", got.Subject)
		assert.Equal(t, envelope.EventID, got.Header.Get(nats.MsgIdHdr))
		var decoded EventEnvelope
		require.NoError(t, json.Unmarshal(got.Data, &decoded))
		assert.Equal(t, "listing-7", decoded.AggregateID)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for nats message")
	}
}
