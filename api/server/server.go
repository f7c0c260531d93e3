/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command server serves the calculators through the configured aspects over
// HTTP, websocket and optionally MQTT.
//
//	server -c calcaop.yaml
//	server -port 9090 -aspects examples/calculator/aspects.json -style discrete
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rulego/calcaop"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/components/calculator"
	"github.com/rulego/calcaop/endpoint/mqtt"
	"github.com/rulego/calcaop/endpoint/rest"
	"github.com/rulego/calcaop/endpoint/websocket"
	"github.com/rulego/calcaop/engine"
)

// server version.
const version = "1.0.0"

var (
	configFile  string
	port        int
	logfile     string
	aspectsFile string
	style       string
	ver         bool
)

func init() {
	flag.StringVar(&configFile, "c", "", "Location of the config file (yaml, json or toml).")
	flag.IntVar(&port, "port", 9090, "The port to listen on.")
	flag.StringVar(&logfile, "logfile", "", "Location of the logfile.")
	flag.StringVar(&aspectsFile, "aspects", "", "Location of the aspect DSL file.")
	flag.StringVar(&style, "style", "", "combined, discrete or around.")
	flag.BoolVar(&ver, "version", false, "Print server version.")
}

// Server the engine and the endpoints serving it
type Server struct {
	Config   *Config
	Engine   *engine.Engine
	logger   types.Logger
	rest     *rest.Rest
	mqtt     *mqtt.Mqtt
	reporter *aspect.MetricsReporter
}

// NewServer loads the aspects, binds the calculators and builds the
// endpoints. Nothing is started.
func NewServer(config *Config, logger types.Logger) (*Server, error) {
	opts := []types.Option{types.WithLogger(logger)}
	var e *engine.Engine
	var err error
	if config.Aspects.File == "" {
		opts = append(opts, types.WithAspects(append(calcaop.DefaultAspects(logger), aspect.NewMetrics(nil))...))
		e, err = calcaop.New(opts...)
	} else {
		var dsl []byte
		if dsl, err = os.ReadFile(config.Aspects.File); err != nil {
			return nil, fmt.Errorf("read aspects file: %w", err)
		}
		e, err = calcaop.NewFromDSL(dsl, opts...)
	}
	if err != nil {
		return nil, err
	}
	if config.Aspects.Style != "" {
		s, ok := types.ParseStyle(config.Aspects.Style)
		if !ok {
			return nil, fmt.Errorf("unknown style %q", config.Aspects.Style)
		}
		e.SetStyle(s)
	}
	e.Freeze()
	calculator.Bind(e)

	s := &Server{Config: config, Engine: e, logger: logger}
	s.rest = rest.New(rest.Config{
		Addr:        ":" + strconv.Itoa(config.Server.Port),
		CertFile:    config.Server.CertFile,
		CertKeyFile: config.Server.CertKeyFile,
	}, e)
	websocket.New(e).Mount(s.rest.Router())

	if config.Mqtt.Enabled {
		s.mqtt = mqtt.New(mqtt.Config{
			Server:               config.Mqtt.Server,
			Username:             config.Mqtt.Username,
			Password:             config.Mqtt.Password,
			ClientID:             config.Mqtt.ClientID,
			Prefix:               config.Mqtt.Prefix,
			QOS:                  config.Mqtt.QOS,
			CleanSession:         config.Mqtt.CleanSession,
			MaxReconnectInterval: config.Mqtt.MaxReconnectInterval,
		}, e)
	}
	if m, ok := aspect.MetricsOf(e.Registry().All()); ok && config.Metrics.Report != "" {
		if s.reporter, err = aspect.NewMetricsReporter(config.Metrics.Report, m.GetMetrics(), logger); err != nil {
			return nil, fmt.Errorf("metrics report: %w", err)
		}
	}
	return s, nil
}

// Handler the http handler of the rest and websocket endpoints
func (s *Server) Handler() http.Handler {
	return s.rest
}

// Start connects the mqtt endpoint and the reporter, then serves http until
// Stop. It returns nil after a graceful Stop.
func (s *Server) Start(ctx context.Context) error {
	if s.mqtt != nil {
		if err := s.mqtt.Start(ctx); err != nil {
			return fmt.Errorf("mqtt endpoint: %w", err)
		}
	}
	if s.reporter != nil {
		s.reporter.Start()
	}
	if err := s.rest.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() {
	s.rest.Stop()
	if s.mqtt != nil {
		s.mqtt.Stop()
	}
	if s.reporter != nil {
		s.reporter.Stop()
	}
}

// applyFlags lets explicitly set flags override the loaded config.
func applyFlags(config *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Server.Port = port
		case "logfile":
			config.Server.LogFile = logfile
		case "aspects":
			config.Aspects.File = aspectsFile
		case "style":
			config.Aspects.Style = style
		}
	})
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("calcaop server v%s", version)
		os.Exit(0)
	}

	config, err := LoadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(config)
	if err := validate.Struct(config); err != nil {
		log.Fatal(err)
	}

	var logger *log.Logger
	if config.Server.LogFile == "" {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		f, err := os.OpenFile(config.Server.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags)
	}

	server, err := NewServer(config, logger)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Print("server initialised.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		server.Stop()
	}()
	if err := server.Start(ctx); err != nil {
		logger.Fatal(err)
	}
	logger.Print("server stopped.")
}
