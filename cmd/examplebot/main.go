// Command examplebot is a minimal bot built on the client, multiclient,
// and command packages: it joins every room named in its config, answers
// the standard botrulez commands, and optionally serves a debug status
// endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sourcegraph/conc"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/client"
	"github.com/zephyrnaut/euphoxide-go/command"
	"github.com/zephyrnaut/euphoxide-go/command/botrulez"
	"github.com/zephyrnaut/euphoxide-go/internal/euphconfig"
	"github.com/zephyrnaut/euphoxide-go/internal/logging"
	"github.com/zephyrnaut/euphoxide-go/multiclient"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./euphbot.yaml)")
	flag.Parse()

	logging.Init("info")

	cfg, err := euphconfig.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("examplebot exited with error", "error", err)
	}
}

func run(ctx context.Context, cfg *euphconfig.Config) error {
	server := client.DefaultServerConfig()
	server.Domain = cfg.Domain
	server.Logger = slog.Default()

	mc := multiclient.New[string](ctx, 32)

	cmds := command.New[string]()
	cmds.Add(botrulez.Ping[string](""))
	cmds.Add(botrulez.Uptime[string]())
	cmds.Add(botrulez.ShortHelp[string](fmt.Sprintf("I'm %s, a bot. Say !help @%s for more.", cfg.Username, cfg.Username)))

	for _, room := range cfg.Rooms {
		builder := mc.ClientBuilderForServer(room, server, room).WithUsername(cfg.Username)
		if cfg.Password != "" {
			builder = builder.WithPassword(cfg.Password)
		}
		if _, added := builder.Add(); !added {
			slog.Warn("room already registered, skipping", "room", room)
		}
	}

	var wg conc.WaitGroup

	wg.Go(func() { dispatchEvents(ctx, mc, cmds) })

	if cfg.StatusAddr != "" {
		wg.Go(func() { serveStatus(ctx, cfg.StatusAddr, mc) })
	}

	wg.Wait()

	return nil
}

func dispatchEvents(ctx context.Context, mc *multiclient.MultiClient[string], cmds *command.Commands[string]) {
	for ev := range mc.Events() {
		if ev.Kind != client.Packet || ev.Packet == nil {
			continue
		}

		sendEvent, ok := ev.Packet.Content.(*api.SendEvent)
		if !ok {
			continue
		}
		if ev.Conn == nil || ev.State.Joined == nil {
			continue
		}

		clients := mc.GetClients()
		cl, ok := clients[ev.Key]
		if !ok {
			continue
		}

		cctx := &command.Context[string]{
			Commands:  cmds,
			Clients:   mc,
			ClientKey: ev.Key,
			Client:    cl,
			Conn:      ev.Conn,
			Joined:    ev.State.Joined,
		}

		if err := cmds.HandleMessage(ctx, cctx, *sendEvent); err != nil {
			slog.Error("command handling failed", "room", ev.Key, "error", err)
		}
	}
}

type statusResponse struct {
	Rooms map[string]roomStatus `json:"rooms"`
}

type roomStatus struct {
	Stopped   bool `json:"stopped"`
	Connected bool `json:"connected"`
}

func serveStatus(ctx context.Context, addr string, mc *multiclient.MultiClient[string]) {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Rooms: make(map[string]roomStatus)}
		for room, cl := range mc.GetClients() {
			_, connected := cl.Conn()
			resp.Rooms[room] = roomStatus{Stopped: cl.Stopped(), Connected: connected}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving status endpoint", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("status server failed", "error", err)
	}
}
