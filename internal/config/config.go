package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalidUniverse is returned when the universe flag is missing or out of range.
	ErrInvalidUniverse = errors.New("invalid universe")
	// ErrInvalidChannel is returned when the start channel is outside 1..255.
	ErrInvalidChannel = errors.New("invalid start channel")
)

const (
	// MaxStartChannel keeps the six channel block inside a 512 slot universe.
	MaxStartChannel = 255
	// MaxUniverse is the largest 15-bit Art-Net port address.
	MaxUniverse     = 0x7fff

	DefaultArtNetPort = 6454
)

// Config структура конфигурации.
type Config struct {
	Logger LogConf    // Logger - конфигурация регистратора.
	ArtNet ArtNetConf // ArtNet - настройки приёма Art-Net.
	Light  LightConf  // Light - подключение к светильнику.
	MQTT   MQTTConf   // MQTT - зеркало состояния в MQTT.
	Status StatusConf // Status - HTTP статус.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level"` // Level - уровень логирования.
}

// ArtNetConf describes the inbound DMX socket.
type ArtNetConf struct {
	Network    string `toml:"network"`     // Network - CIDR интерфейса для прослушивания, пусто = все интерфейсы.
	Port       int    `toml:"port"`        // Port - UDP порт Art-Net.
	QueueDepth int    `toml:"queue-depth"` // QueueDepth - глубина очереди кадров.
}

// LightConf describes how the light is found and polled.
type LightConf struct {
	Address            string `toml:"address"`              // Address - host:port, пусто = поиск в сети.
	DiscoveryTimeoutMs int    `toml:"discovery-timeout-ms"` // DiscoveryTimeoutMs - время ожидания ответов поиска.
	DialTimeoutMs      int    `toml:"dial-timeout-ms"`      // DialTimeoutMs - таймаут TCP подключения.
	WriteTimeoutMs     int    `toml:"write-timeout-ms"`     // WriteTimeoutMs - таймаут одной команды.
	PowerPollMs        int    `toml:"power-poll-ms"`        // PowerPollMs - период опроса питания, 0 = выключено.
}

// MQTTConf структура конфигурации.
type MQTTConf struct {
	Enabled  bool   `toml:"enabled"`  // Enabled - публиковать состояние.
	ClientID string `toml:"clientID"` // ClientID - имя клиента.
	Host     string `toml:"server"`   // Host - адрес MQTT сервера.
	Port     string `toml:"port"`     // Port - порт MQTT сервера.
	User     string `toml:"user"`     // User - логин для подключения к MQTT серверу.
	Password string `toml:"password"` // Password - пароль для подключения к MQTT серверу.
	Qos      byte   `toml:"qos"`      // Qos - качество обслуживания.
	Topic    string `toml:"topic"`    // Topic - топик для публикации команд.
}

// StatusConf структура конфигурации.
type StatusConf struct {
	Listen string `toml:"listen"` // Listen - адрес HTTP сервера, пусто = выключен.
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "info"},
		ArtNet: ArtNetConf{
			Port:       DefaultArtNetPort,
			QueueDepth: 1,
		},
		Light: LightConf{
			DiscoveryTimeoutMs: 3000,
			DialTimeoutMs:      5000,
			WriteTimeoutMs:     2000,
			PowerPollMs:        5000,
		},
		MQTT: MQTTConf{
			ClientID: "artnet2magichome",
			Port:     "1883",
			Topic:    "artnet2magichome/state",
		},
	}
}

// NewConfig конструктор. Пустой путь возвращает значения по умолчанию.
func NewConfig(path string) (*Config, error) {
	// default values
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	if cfg.ArtNet.QueueDepth < 1 {
		return &cfg, fmt.Errorf("artnet queue-depth must be at least 1, got %d", cfg.ArtNet.QueueDepth)
	}
	return &cfg, nil
}

// ChannelMap is the universe and 1-based start channel the light listens on.
type ChannelMap struct {
	Universe     int
	StartChannel int
}

// NewChannelMap validates the command line values.
func NewChannelMap(universe, startChannel int) (ChannelMap, error) {
	if universe < 0 || universe > MaxUniverse {
		return ChannelMap{}, fmt.Errorf("%w: %d", ErrInvalidUniverse, universe)
	}
	if startChannel < 1 || startChannel > MaxStartChannel {
		return ChannelMap{}, fmt.Errorf("%w: %d (expected 1..%d)", ErrInvalidChannel, startChannel, MaxStartChannel)
	}
	return ChannelMap{Universe: universe, StartChannel: startChannel}, nil
}
