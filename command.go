package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MixinNetwork/plog/client"
	"github.com/MixinNetwork/plog/collector"
	"github.com/MixinNetwork/plog/config"
	"github.com/MixinNetwork/plog/logger"
	"github.com/MixinNetwork/plog/network"
	"github.com/MixinNetwork/plog/rpc"
	"github.com/MixinNetwork/plog/storage"
	"github.com/urfave/cli/v2"
)

func setup(c *cli.Context) (*config.Custom, *logger.Logger, error) {
	custom := config.Default()
	if path := c.String("config"); path != "" {
		cc, err := config.Initialize(path)
		if err != nil {
			return nil, nil, err
		}
		custom = cc
	}
	if c.IsSet("log") {
		custom.Log.Level = c.Int("log")
	}
	if c.IsSet("filter") {
		custom.Log.Filter = c.String("filter")
	}

	log := logger.New(custom.Log.Level, os.Stderr)
	log.SetLimiter(custom.Log.Limiter)
	err := log.SetFilter(custom.Log.Filter)
	if err != nil {
		return nil, nil, err
	}
	return custom, log, nil
}

func newClient(c *cli.Context, custom *config.Custom, log *logger.Logger) (*client.Client, error) {
	if c.IsSet("host") {
		custom.Client.Host = c.String("host")
	}
	if c.IsSet("port") {
		custom.Client.Port = c.Int("port")
	}
	if c.IsSet("chunk-size") {
		custom.Client.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("send-buffer-size") {
		custom.Client.SendBufferSize = c.Int("send-buffer-size")
	}
	return client.New(client.Options{
		Host:                  custom.Client.Host,
		Port:                  custom.Client.Port,
		SendBufferSize:        custom.Client.SendBufferSize,
		ChunkSize:             custom.Client.ChunkSize,
		LargeMessageThreshold: custom.Client.LargeMessageThreshold,
		OnLargeMessage: func(pc *client.Client, message []byte) error {
			log.Printf("plog: sending large message of %d bytes to %s:%d\n", len(message), pc.Host(), pc.Port())
			return nil
		},
		Logger: log,
	})
}

func sendCmd(c *cli.Context) error {
	custom, log, err := setup(c)
	if err != nil {
		return err
	}
	message, err := readMessage(c)
	if err != nil {
		return err
	}

	pc, err := newClient(c, custom, log)
	if err != nil {
		return err
	}
	defer pc.Close()

	id, err := pc.Send(message, c.StringSlice("tag")...)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func readMessage(c *cli.Context) ([]byte, error) {
	switch path := c.String("file"); {
	case path == "-":
		return io.ReadAll(os.Stdin)
	case path != "":
		return os.ReadFile(path)
	case c.Args().Len() > 0:
		return []byte(strings.Join(c.Args().Slice(), " ")), nil
	default:
		return io.ReadAll(os.Stdin)
	}
}

func statsCmd(c *cli.Context) error {
	custom, log, err := setup(c)
	if err != nil {
		return err
	}
	pc, err := newClient(c, custom, log)
	if err != nil {
		return err
	}
	defer pc.Close()

	stats, err := pc.Stats(c.Duration("timeout"))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func collectCmd(c *cli.Context) error {
	custom, log, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet("listener") {
		custom.Collector.Listener = c.String("listener")
	}
	if c.IsSet("dir") {
		custom.Collector.Dir = c.String("dir")
	}
	if c.IsSet("ttl") {
		custom.Collector.Expiry = time.Duration(c.Int("ttl")) * time.Second
	}
	if c.IsSet("http") {
		custom.Collector.HTTPPort = c.Int("http")
	}

	server, err := network.NewUdpServer(custom.Collector.Listener)
	if err != nil {
		return err
	}
	err = server.Listen()
	if err != nil {
		return err
	}
	defer server.Close()

	var store storage.Store
	var reader rpc.MessageReader
	if dir := custom.Collector.Dir; dir != "" {
		bs, err := storage.NewBadgerStore(dir, log)
		if err != nil {
			return err
		}
		defer bs.Close()
		store, reader = bs, bs
	}

	handler := func(m *collector.Message) error {
		fmt.Printf("%d %s %s\n", m.Id, strings.Join(m.Tags, ","), m.Data)
		if store == nil {
			return nil
		}
		return store.WriteMessage(m)
	}
	coll := collector.New(server, collector.Options{
		TTL:     custom.Collector.Expiry,
		Handler: handler,
		Logger:  log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if p := custom.Collector.HTTPPort; p > 0 {
		go func() {
			err := rpc.StartHTTP(ctx, coll, reader, p)
			if err != nil {
				log.Errorf("plog: http server on port %d: %v\n", p, err)
				stop()
			}
		}()
	}

	log.Printf("plog: collector listening on %s\n", server.LocalAddr())
	return coll.Run(ctx)
}
