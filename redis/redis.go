package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"goxchain/types"
)

// Publisher fans simulator events out to redis pub/sub channels, one per
// record kind: <prefix>:messages, <prefix>:transactions, <prefix>:balances
type Publisher struct {
	pool   *redis.Pool
	prefix string
}

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func NewPublisher(host string, port int, prefix string) *Publisher {
	redisAddr := fmt.Sprintf("%s:%d", host, port)
	return &Publisher{
		pool: &redis.Pool{
			MaxIdle:     5,
			IdleTimeout: 4 * time.Minute,
			Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
		},
		prefix: prefix,
	}
}

// Ping checks the connection, without redis the fan-out should not start
func (p *Publisher) Ping() error {
	conn := p.pool.Get()
	defer conn.Close()

	_, err := conn.Do("PING")
	return err
}

// Channel returns the channel name events of this type go to
func (p *Publisher) Channel(ev types.Event) (string, error) {
	switch {
	case ev.Message != nil:
		return p.prefix + ":messages", nil
	case ev.Transaction != nil:
		return p.prefix + ":transactions", nil
	case ev.Balance != nil:
		return p.prefix + ":balances", nil
	}
	return "", errors.New("event carries no record")
}

func (p *Publisher) Publish(ev types.Event) error {
	channel, err := p.Channel(ev)
	if err != nil {
		return err
	}

	evJSON, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("cannot marshal %s event to JSON: %w", ev.Type, err)
	}

	conn := p.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", channel, evJSON); err != nil {
		return fmt.Errorf("redis PUBLISH %s: %w", channel, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.pool.Close()
}
