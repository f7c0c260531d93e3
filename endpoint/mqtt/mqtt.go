/*
 * Copyright 2024 The RuleGo Authors.
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

// Package mqtt serves proxied targets over an MQTT broker.
//
// A call is published to <prefix>/invoke/<target>/<method> with either a JSON
// body {"id":"...","args":[4,2]} or a comma separated list "4,2". The reply
// (endpoint.Reply as JSON) is published to <prefix>/reply/<target>/<method>.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/uuid/v5"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/endpoint"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/json"
)

const (
	// DefaultPrefix topic prefix used when Config.Prefix is empty
	DefaultPrefix = "calcaop"
	invokeLevel   = "invoke"
	replyLevel    = "reply"
)

// ErrBadTopic is returned for topics not shaped <prefix>/invoke/<target>/<method>.
var ErrBadTopic = errors.New("bad invoke topic")

// Config 客户端配置
type Config struct {
	//mqtt broker 地址
	Server string
	//用户名
	Username string
	//密码
	Password string
	//重连重试间隔
	MaxReconnectInterval time.Duration
	QOS                  uint8
	CleanSession         bool
	//client Id
	ClientID    string
	CAFile      string
	CertFile    string
	CertKeyFile string
	// Prefix topic prefix, default DefaultPrefix
	Prefix string
}

// Mqtt mqtt 端点
type Mqtt struct {
	Config Config
	engine *engine.Engine
	logger types.Logger

	lock    sync.Mutex
	client  paho.Client
	publish func(topic string, payload []byte) error
}

func New(config Config, e *engine.Engine) *Mqtt {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	return &Mqtt{Config: config, engine: e, logger: e.Config().Logger}
}

// InvokeTopic subscription filter for calls.
func (m *Mqtt) InvokeTopic() string {
	return m.Config.Prefix + "/" + invokeLevel + "/+/+"
}

// ReplyTopic topic the reply to target.method is published on.
func (m *Mqtt) ReplyTopic(target, method string) string {
	return m.Config.Prefix + "/" + replyLevel + "/" + target + "/" + method
}

// Start connects to the broker, retrying every 2s until ctx is done, and
// subscribes to InvokeTopic. Subscriptions are renewed on reconnect.
func (m *Mqtt) Start(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(m.Config.Server)
	opts.SetUsername(m.Config.Username)
	opts.SetPassword(m.Config.Password)
	opts.SetCleanSession(m.Config.CleanSession)
	if m.Config.ClientID == "" {
		id, _ := uuid.NewV4()
		opts.SetClientID("calcaop/" + id.String()[:8])
	} else {
		opts.SetClientID(m.Config.ClientID)
	}
	if m.Config.MaxReconnectInterval <= 0 {
		m.Config.MaxReconnectInterval = time.Second * 60
	}
	opts.SetMaxReconnectInterval(m.Config.MaxReconnectInterval)
	// handlers publish the reply themselves
	opts.SetOrderMatters(false)
	opts.SetOnConnectHandler(func(c paho.Client) {
		if token := c.Subscribe(m.InvokeTopic(), m.Config.QOS, m.Handle); token.Wait() && token.Error() != nil {
			m.logger.Printf("mqtt subscribe %s err :%v", m.InvokeTopic(), token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(c paho.Client, reason error) {
		m.logger.Printf("mqtt connection lost :%v", reason)
	})
	tlsConfig, err := newTLSConfig(m.Config.CAFile, m.Config.CertFile, m.Config.CertKeyFile)
	if err != nil {
		return fmt.Errorf("error loading mqtt certificate files,ca_cert=%s,tls_cert=%s,tls_key=%s: %w", m.Config.CAFile, m.Config.CertFile, m.Config.CertKeyFile, err)
	}
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	client := paho.NewClient(opts)
	for {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			select {
			case <-ctx.Done():
				return token.Error()
			case <-time.After(2 * time.Second):
			}
		} else {
			break
		}
	}
	m.lock.Lock()
	m.client = client
	m.publish = func(topic string, payload []byte) error {
		token := client.Publish(topic, m.Config.QOS, false, payload)
		token.Wait()
		return token.Error()
	}
	m.lock.Unlock()
	m.logger.Printf("mqtt endpoint connected to %s, subscribed %s", m.Config.Server, m.InvokeTopic())
	return nil
}

func (m *Mqtt) Stop() {
	m.lock.Lock()
	client := m.client
	m.client = nil
	m.lock.Unlock()
	if client == nil {
		return
	}
	client.Unsubscribe(m.InvokeTopic()).Wait()
	client.Disconnect(500)
}

// Handle runs one call message and publishes its reply. Malformed topics and
// payloads are logged and dropped.
func (m *Mqtt) Handle(c paho.Client, msg paho.Message) {
	defer func() {
		//捕捉异常
		if e := recover(); e != nil {
			m.logger.Printf("mqtt handler err :%v", e)
		}
	}()
	target, method, err := m.parseTopic(msg.Topic())
	if err != nil {
		m.logger.Printf("mqtt handler err :%v", err)
		return
	}
	req, err := ParsePayload(msg.Payload())
	if err != nil {
		m.logger.Printf("mqtt payload on %s err :%v", msg.Topic(), err)
		return
	}
	req.Target, req.Method = target, method
	reply := endpoint.Invoke(m.engine, req)
	body, err := json.Marshal(reply)
	if err != nil {
		m.logger.Printf("mqtt reply marshal err :%v", err)
		return
	}
	m.lock.Lock()
	publish := m.publish
	m.lock.Unlock()
	if publish == nil {
		return
	}
	if err := publish(m.ReplyTopic(target, method), body); err != nil {
		m.logger.Printf("mqtt publish err :%v", err)
	}
}

func (m *Mqtt) parseTopic(topic string) (target, method string, err error) {
	parts := strings.Split(strings.TrimPrefix(topic, m.Config.Prefix+"/"), "/")
	if len(parts) != 3 || parts[0] != invokeLevel || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	return parts[1], parts[2], nil
}

// ParsePayload reads a call body: a JSON object carrying id and args, or a
// comma separated argument list.
func ParsePayload(payload []byte) (endpoint.Request, error) {
	var req endpoint.Request
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "{") {
		err := json.Unmarshal([]byte(trimmed), &req)
		return req, err
	}
	for _, arg := range endpoint.ParseArgs(trimmed) {
		req.Args = append(req.Args, arg.Interface())
	}
	return req, nil
}

func newTLSConfig(CAFile, certFile, certKeyFile string) (*tls.Config, error) {
	if CAFile == "" && certFile == "" && certKeyFile == "" {
		return nil, nil
	}
	tlsConfig := &tls.Config{}
	if CAFile != "" {
		caCert, err := os.ReadFile(CAFile)
		if err != nil {
			return nil, err
		}
		certPool := x509.NewCertPool()
		certPool.AppendCertsFromPEM(caCert)
		tlsConfig.RootCAs = certPool
	}
	if certFile != "" && certKeyFile != "" {
		kp, err := tls.LoadX509KeyPair(certFile, certKeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{kp}
	}
	return tlsConfig, nil
}
