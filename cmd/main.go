package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artnet2magichome/internal/artnet"
	"artnet2magichome/internal/bridge"
	"artnet2magichome/internal/clientmqtt"
	"artnet2magichome/internal/config"
	"artnet2magichome/internal/dispatch"
	"artnet2magichome/internal/logger"
	"artnet2magichome/internal/magichome"
	"artnet2magichome/internal/status"
)

var (
	configFile   string
	universe     int
	startChannel int
)

func init() {
	flag.StringVar(&configFile, "config", "", "Path to configuration file")
	flag.IntVar(&universe, "universe", -1, "Art-Net universe to listen on (required)")
	flag.IntVar(&universe, "u", -1, "Art-Net universe (shorthand)")
	flag.IntVar(&startChannel, "channel", -1, "DMX start channel 1..255 (required)")
	flag.IntVar(&startChannel, "c", -1, "DMX start channel (shorthand)")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration file read error: %v\n", err)
		os.Exit(1)
	}

	channels, err := config.NewChannelMap(universe, startChannel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create a logger: %v\n", err)
		os.Exit(1)
	}

	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	addr, err := lightAddress(ctx, log, cfg.Light)
	if err != nil {
		log.With(logger.Fields{"module": "light"}).Errorf("light discovery failed: %v", err)
		os.Exit(1)
	}

	light := magichome.NewLight(addr,
		magichome.DialTimeout(time.Duration(cfg.Light.DialTimeoutMs)*time.Millisecond),
		magichome.WriteTimeout(time.Duration(cfg.Light.WriteTimeoutMs)*time.Millisecond),
	)
	if err = light.Connect(ctx); err != nil {
		log.With(logger.Fields{"module": "light"}).Errorf("failed to connect to %s: %v", addr, err)
		os.Exit(1)
	}
	log.With(logger.Fields{"module": "light"}).Infof("connected to light %s (power=%v)", addr, light.Power())

	mailbox := bridge.NewMailbox(cfg.ArtNet.QueueDepth)
	opts := []bridge.Option{
		bridge.WithPowerPoll(time.Duration(cfg.Light.PowerPollMs) * time.Millisecond),
	}

	var client *clientmqtt.ClientMQTT
	if cfg.MQTT.Enabled {
		client = clientmqtt.NewClient(log, ConvertConfigClientMQTT(cfg.MQTT))
		if err = client.Start(ctx); err != nil {
			log.Error("failed to start MQTT service:", err.Error())
			os.Exit(1)
		}
		opts = append(opts, bridge.WithNotifier(client))
	}

	b := bridge.New(log, channels, dispatch.New(log, light), mailbox, opts...)
	if err = b.Init(ctx); err != nil {
		log.With(logger.Fields{"module": "light"}).Errorf("failed to prepare the light: %v", err)
		os.Exit(1)
	}

	listener, err := artnet.NewListener(log, cfg.ArtNet, channels.Universe, mailbox)
	if err != nil {
		log.With(logger.Fields{"module": "art-net"}).Errorf("error while creating the art-net listener. %v", err)
		os.Exit(1)
	}
	listener.Start(ctx)

	if cfg.Status.Listen != "" {
		status.NewServer(cfg.Status.Listen, b, log).Start(ctx)
	}

	log.Infof("Art-Net listener ready: universe %d, start channel %d", channels.Universe, channels.StartChannel)
	go b.Run(ctx)

	<-ctx.Done()

	if client != nil {
		if err := client.Stop(); err != nil {
			log.Error("failed to stop MQTT service:", err.Error())
		}
	}

	listener.Wait()
	if err := light.Close(); err != nil {
		log.Warn("closing light connection:", err.Error())
	}

	log.Info("shutdown complete")
}

// lightAddress returns the configured address or the first light that
// answers discovery.
func lightAddress(ctx context.Context, log logger.Logger, cfg config.LightConf) (string, error) {
	if cfg.Address != "" {
		return cfg.Address, nil
	}

	log.With(logger.Fields{"module": "light"}).Info("Finding Light")
	devices, err := magichome.Discover(ctx, magichome.DiscoverOptions{
		Timeout: time.Duration(cfg.DiscoveryTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		if errors.Is(err, magichome.ErrNoLightFound) {
			return "", err
		}
		return "", fmt.Errorf("discovery: %w", err)
	}
	log.With(logger.Fields{"module": "light"}).Infof("Found %d lights, using %s (%s)", len(devices), devices[0].IP, devices[0].Model)
	return devices[0].Addr(), nil
}

// ConvertConfigClientMQTT преобразует структуры.
func ConvertConfigClientMQTT(cfg config.MQTTConf) clientmqtt.MQTTConf {
	return clientmqtt.MQTTConf{
		ClientID: cfg.ClientID,
		Schema:   "tcp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Qos:      cfg.Qos,
		Topic:    cfg.Topic,
	}
}
