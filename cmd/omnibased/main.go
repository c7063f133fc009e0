// Command omnibased runs the motion-control core of a three-wheel holonomic
// base: it wires the wheels to GPIO (or to a simulated plant), starts the
// command ingress listeners and ticks the robot on a fixed period.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/viper"

	"github.com/itohio/omnibase/config"
	"github.com/itohio/omnibase/logger"
	"github.com/itohio/omnibase/robot"
	"github.com/itohio/omnibase/transport"
)

var log = logger.Log.With().Str("app", "omnibased").Logger()

func main() {
	v := viper.New()
	v.SetEnvPrefix("OMNIBASE")
	v.AutomaticEnv()
	v.SetDefault("config", "omnibase.yaml")
	v.SetDefault("sim", false)

	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Fatal().Err(err).Msg("load config")
			}
			log.Warn().Str("path", path).Msg("no config file, using defaults")
		} else {
			cfg = loaded
		}
	}

	params := cfg.Params
	if cfg.ParamsPath != "" {
		loaded, err := config.LoadParams(cfg.ParamsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load params")
		}
		params = loaded
	}

	clk := clock.New()

	var (
		bench *plant
		err   error
		r     *robot.Robot
	)
	if v.GetBool("sim") {
		bench, r = buildSim(cfg, params, clk)
		log.Info().Msg("running against simulated plant")
	} else {
		r, err = buildHardware(cfg, clk)
		if err != nil {
			log.Fatal().Err(err).Msg("wire hardware")
		}
	}
	r.ApplyParams(params)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Transports run on their own goroutines; commands cross into the
	// control loop through this queue so the robot stays single-threaded.
	queue := newCommandQueue(64)
	if cfg.Serial.Enabled {
		s := transport.NewSerial(cfg.Serial.Device, cfg.Serial.Baud, log)
		go func() {
			if err := s.Run(ctx, queue); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("serial ingress failed")
			}
		}()
	}
	if cfg.MQTT.Enabled {
		m := transport.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.Topic, log)
		go func() {
			if err := m.Run(ctx, queue); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("mqtt ingress failed")
			}
		}()
	}

	period := time.Duration(cfg.LoopPeriodMS) * time.Millisecond
	ticker := clk.Ticker(period)
	defer ticker.Stop()

	log.Info().Dur("period", period).Msg("control loop up")
	for {
		select {
		case <-ctx.Done():
			r.EmergencyStop()
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			queue.drainInto(r)
			if bench != nil {
				bench.step(period.Seconds())
			}
			r.Handle()
		}
	}
}

// commandQueue ferries decoded frames from transport goroutines into the
// control loop. HandleMessage reports acceptance into the queue; dispatch
// results surface in the log once the loop drains them.
type commandQueue struct {
	ch chan transport.Message
}

func newCommandQueue(depth int) *commandQueue {
	return &commandQueue{ch: make(chan transport.Message, depth)}
}

func (q *commandQueue) HandleMessage(cmd byte, args []float64) bool {
	select {
	case q.ch <- transport.Message{Cmd: cmd, Args: args}:
		return true
	default:
		return false
	}
}

func (q *commandQueue) drainInto(r *robot.Robot) {
	for {
		select {
		case msg := <-q.ch:
			if !r.HandleMessage(msg.Cmd, msg.Args) {
				log.Warn().Uint8("cmd", msg.Cmd).Msg("command rejected")
			}
		default:
			return
		}
	}
}
