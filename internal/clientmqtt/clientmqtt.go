package clientmqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"artnet2magichome/internal/gate"
	"artnet2magichome/internal/logger"
	"artnet2magichome/internal/mapping"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientMQTT mirrors every command applied to the light into a retained topic.
type ClientMQTT struct {
	log       logger.Logger
	cfgClient MQTTConf
	client    mqtt.Client
	pub       publisher
	opts      *mqtt.ClientOptions
	queue     chan StateMessage
	now       func() time.Time
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf) *ClientMQTT {
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		queue:     make(chan StateMessage, queueSize),
		now:       time.Now,
	}
}

func (c *ClientMQTT) Start(ctx context.Context) error {
	if c.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	if c.cfgClient.Host == "" || c.cfgClient.Topic == "" {
		return errors.New("mqtt server and topic must be set")
	}

	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", c.cfgClient.Schema, c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(true).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-ctx.Done():
		return errors.New("context canceled")
	}

	c.log.With(logger.Fields{"module": "mqtt"}).Infof("Status: %v", c.client.IsConnected())
	c.pub = c.client
	go c.run(ctx)
	return nil
}

func (c *ClientMQTT) Stop() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(500)
	}
	return nil
}

// Notify queues the state for publishing. It never blocks the caller;
// when the broker is slow the message is dropped.
func (c *ClientMQTT) Notify(cmd mapping.LightCommand, state gate.DeviceState) {
	msg := StateMessage{Command: cmd, State: state, Time: c.now()}
	select {
	case c.queue <- msg:
	default:
		c.log.With(logger.Fields{"module": "mqtt"}).Warn("publish queue full, state message dropped")
	}
}

func (c *ClientMQTT) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.queue:
			c.publish(ctx, msg)
		}
	}
}

func (c *ClientMQTT) publish(ctx context.Context, msg StateMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.With(logger.Fields{"module": "mqtt"}).Errorf("state message could not be encoded: %v", err)
		return
	}

	token := c.pub.Publish(c.cfgClient.Topic, c.cfgClient.Qos, true, payload)
	select {
	case <-ctx.Done():
	case <-token.Done():
		if token.Error() != nil {
			c.log.With(logger.Fields{"module": "mqtt"}).Errorf("error publish topic %s. %v", c.cfgClient.Topic, token.Error())
			return
		}
		c.log.With(logger.Fields{"module": "mqtt"}).Debugf("published %v", msg.Command)
	}
}

func (c *ClientMQTT) connectHandler(_ mqtt.Client) {
	c.log.With(logger.Fields{"module": "mqtt"}).Info("client connected to server")
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.With(logger.Fields{"module": "mqtt"}).Errorf("server connect lost: %v", err)
}
