package clientmqtt

import (
	"time"

	"artnet2magichome/internal/gate"
	"artnet2magichome/internal/mapping"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type MQTTConf struct {
	ClientID string // ClientID - уникальное имя клиента для брокеров.
	Schema   string // Schema - тип подключения.
	Host     string // Host - адрес MQTT сервера.
	Port     string // Port - порт MQTT сервера.
	User     string // User - логин для подключения к MQTT серверу.
	Password string // Password - пароль для подключения к MQTT серверу.
	Qos      byte   // Qos - качество обслуживания.
	Topic    string // Topic - топик состояния.
}

// StateMessage is the retained payload published after every applied command.
type StateMessage struct {
	Command mapping.LightCommand `json:"command"`
	State   gate.DeviceState     `json:"state"`
	Time    time.Time            `json:"time"`
}

// publisher is the part of mqtt.Client used after connecting.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// queueSize bounds messages waiting for the broker.
const queueSize = 16
