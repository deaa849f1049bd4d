package kafkax

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

const brokerProbeTimeout = 2 * time.Second

// ReadyCheck reports whether the first configured broker accepts a TCP
// connection. One reachable broker is enough for the client to discover the
// rest of the cluster.
func ReadyCheck(brokers string) func(context.Context) error {
	return func(ctx context.Context) error {
		addrs := SplitBrokers(brokers)
		if len(addrs) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: brokerProbeTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", addrs[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
